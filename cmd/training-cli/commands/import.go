package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/noah-isme/training-admin-api/pkg/spreadsheet"
)

func newImportCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import trainees from a CSV or XLSX spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close() //nolint:errcheck

			table, err := spreadsheet.Read(filepath.Base(file), f)
			if err != nil {
				return err
			}

			if dryRun {
				preview, err := app.Imports.Preview(cmd.Context(), table)
				if err != nil {
					return fmt.Errorf("preview %s: %w", file, err)
				}
				return printJSON(cmd, preview)
			}
			report, err := app.Imports.Import(cmd.Context(), table)
			if report != nil {
				if printErr := printJSON(cmd, report); printErr != nil {
					return printErr
				}
			}
			if err != nil {
				return fmt.Errorf("import %s: %w", file, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "spreadsheet to import (.csv or .xlsx)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and classify without writing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
