package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/analysis"
	"github.com/sells-group/visibility-cli/internal/config"
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/outwriter"
	"github.com/sells-group/visibility-cli/internal/report"
)

var (
	analyzeLead      model.Lead
	analyzeFormat    string
	analyzeReportDir string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score one business against its local competitors",
	Example: `  visibility analyze --name "Café Nord" --city Malmö --first-name Ana --email ana@example.com
  visibility analyze --name "Café Nord" --city Malmö --first-name Ana --email ana@example.com --format json --report-dir ./out`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initAnalysis(ctx, config.ModeAnalyze)
		if err != nil {
			return err
		}
		defer env.Close()

		a, err := env.Service.Analyze(ctx, analyzeLead)
		if err != nil {
			cmd.PrintErrln(analysis.UserMessage(err))
			return err
		}

		if analyzeReportDir != "" {
			if err := writeReports(analyzeReportDir, a); err != nil {
				return err
			}
		}

		return outwriter.WriteAnalysis(cmd.OutOrStdout(), a, outwriter.Options{
			Format:    analyzeFormat,
			UseColors: !color.NoColor,
		})
	},
}

// writeReports saves every rendered report of a under dir.
func writeReports(dir string, a *model.Analysis) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create report dir %s", dir)
	}
	for _, format := range report.Formats() {
		r, ok := a.Reports[format]
		if !ok {
			continue
		}
		path := filepath.Join(dir, r.Filename)
		if err := os.WriteFile(path, r.Data, 0o644); err != nil {
			return eris.Wrapf(err, "write report %s", path)
		}
		zap.L().Info("report written", zap.String("path", path))
	}
	return nil
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeLead.BusinessName, "name", "", "business name as listed on Google Maps")
	f.StringVar(&analyzeLead.City, "city", "", "city the business is in")
	f.StringVar(&analyzeLead.FirstName, "first-name", "", "lead first name")
	f.StringVar(&analyzeLead.Email, "email", "", "lead email")
	f.StringVar(&analyzeLead.Phone, "phone", "", "lead phone (optional)")
	f.StringVar(&analyzeFormat, "format", outwriter.FormatTable, "output format: table, json, yaml or csv")
	f.StringVar(&analyzeReportDir, "report-dir", "", "write rendered reports to this directory")
	_ = analyzeCmd.MarkFlagRequired("name")
	_ = analyzeCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(analyzeCmd)
}
