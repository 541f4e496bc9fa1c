package main

import (
	"errors"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/visibility-cli/internal/analysis"
	"github.com/sells-group/visibility-cli/internal/config"
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/outwriter"
	"github.com/sells-group/visibility-cli/internal/report"
)

var (
	scoreInput     string
	scoreFormat    string
	scoreReportDir string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a business profile from a JSON file without calling Google",
	Long: `Reads a score request of the form {"business": {...}, "competitors": [...]}
and scores it offline. Competitors go through the same chain filter as a live
analysis. Use --input - to read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(config.ModeScore); err != nil {
			return err
		}

		data, err := readInput(cmd.InOrStdin(), scoreInput)
		if err != nil {
			return err
		}

		req, err := model.DecodeScoreRequest(data)
		if err != nil {
			var schemaErr *model.SchemaError
			if errors.As(err, &schemaErr) {
				for _, v := range schemaErr.Violations {
					cmd.PrintErrln("  " + v)
				}
			}
			return err
		}

		svc := analysis.New(nil, nil, nil, analysis.WithCompetitorLimit(cfg.Google.CompetitorLimit))
		a := svc.ScoreProfile(req)

		if scoreReportDir != "" {
			a.Reports = report.RenderAll(a)
			if err := writeReports(scoreReportDir, a); err != nil {
				return err
			}
		}

		return outwriter.WriteAnalysis(cmd.OutOrStdout(), a, outwriter.Options{
			Format:    scoreFormat,
			UseColors: !color.NoColor,
		})
	},
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, eris.Wrap(err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return data, nil
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreInput, "input", "i", "", "score request JSON file, or - for stdin")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", outwriter.FormatTable, "output format: table, json, yaml or csv")
	scoreCmd.Flags().StringVar(&scoreReportDir, "report-dir", "", "render reports into this directory")
	_ = scoreCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(scoreCmd)
}
