package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/training-admin-api/internal/service"
	"github.com/noah-isme/training-admin-api/pkg/period"
)

func newReportCmd() *cobra.Command {
	var (
		reportType string
		format     string
		rangeName  string
		startDate  string
		endDate    string
		courseID   string
		days       int
		out        string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render an analytics report to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := period.ParseSelector(rangeName)
			if err != nil {
				return err
			}
			req := service.AnalyticsRequest{Selector: sel, CourseID: courseID, Days: days}
			if sel == period.Custom {
				loc := cfg.Analytics.Location()
				start, err := time.ParseInLocation("2006-01-02", startDate, loc)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				end, err := time.ParseInLocation("2006-01-02", endDate, loc)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}
				req.Explicit = &period.Range{Start: start, End: end.AddDate(0, 0, 1).Add(-period.Tick)}
			}

			result, err := app.Exports.Export(cmd.Context(), service.ExportRequest{
				Type:      service.ReportType(reportType),
				Format:    service.ReportFormat(format),
				Analytics: req,
			})
			if err != nil {
				return err
			}
			target := out
			if target == "" {
				target = result.Filename
			} else if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
				target = filepath.Join(target, result.Filename)
			}
			if err := os.WriteFile(target, result.Payload, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", target, len(result.Payload))
			return nil
		},
	}
	cmd.Flags().StringVarP(&reportType, "type", "t", string(service.ReportTypeSummary), "summary|courses|students|departments|timeseries")
	cmd.Flags().StringVar(&format, "format", "", "csv|html|pdf (defaults to REPORTS_DEFAULT_FORMAT)")
	cmd.Flags().StringVar(&rangeName, "range", string(period.DefaultSelector), "today|week|month|quarter|year|custom")
	cmd.Flags().StringVar(&startDate, "start", "", "custom range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "custom range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&courseID, "course", "", "restrict to one course")
	cmd.Flags().IntVar(&days, "days", 0, "time series length")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory")
	return cmd
}
