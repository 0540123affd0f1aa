package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/training-admin-api/cmd/training-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
