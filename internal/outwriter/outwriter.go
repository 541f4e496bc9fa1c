// Package outwriter prints analyses for the command line.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/scorer"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatTable, FormatJSON, FormatYAML, FormatCSV}

// Options controls rendering.
type Options struct {
	Format    string
	UseColors bool
}

// Summary is the serialized form of an analysis for json and yaml output.
type Summary struct {
	Token              string             `json:"token,omitempty" yaml:"token,omitempty"`
	Business           string             `json:"business" yaml:"business"`
	Address            string             `json:"address,omitempty" yaml:"address,omitempty"`
	Total              int                `json:"total" yaml:"total"`
	Grade              model.Grade        `json:"grade" yaml:"grade"`
	SubScores          map[string]float64 `json:"sub_scores" yaml:"sub_scores"`
	MaxScores          map[string]float64 `json:"max_scores" yaml:"max_scores"`
	CompetitorMedian   float64            `json:"competitor_median_reviews" yaml:"competitor_median_reviews"`
	TopCompetitor      string             `json:"top_competitor,omitempty" yaml:"top_competitor,omitempty"`
	CompetitorsBeating int                `json:"competitors_beating" yaml:"competitors_beating"`
	ReviewRatioText    string             `json:"review_ratio_text" yaml:"review_ratio_text"`
	Competitors        []CompetitorLine   `json:"competitors" yaml:"competitors"`
	Recommendations    []string           `json:"recommendations" yaml:"recommendations"`
}

// CompetitorLine is one competitor in a Summary.
type CompetitorLine struct {
	Name    string  `json:"name" yaml:"name"`
	Rating  float64 `json:"rating" yaml:"rating"`
	Reviews int     `json:"reviews" yaml:"reviews"`
	Photos  int     `json:"photos" yaml:"photos"`
	Score   int     `json:"score" yaml:"score"`
}

// Summarize builds the serialized form of a.
func Summarize(a *model.Analysis) Summary {
	maxScores := a.Scores.MaxScores
	if len(maxScores) == 0 {
		maxScores = scorer.MaxScores()
	}
	s := Summary{
		Token:              a.Token,
		Business:           a.Business.Name,
		Address:            a.Business.Address,
		Total:              a.Scores.Total,
		Grade:              a.Scores.Grade,
		SubScores:          make(map[string]float64, len(model.Metrics)),
		MaxScores:          maxScores,
		CompetitorMedian:   a.Scores.CompetitorAvgReviews,
		TopCompetitor:      a.TopCompetitorName,
		CompetitorsBeating: a.CompetitorsBeating,
		ReviewRatioText:    a.ReviewRatioText,
		Competitors:        make([]CompetitorLine, 0, len(a.Competitors)),
		Recommendations:    a.Scores.Recommendations,
	}
	for _, m := range model.Metrics {
		s.SubScores[m] = a.Scores.SubScore(m)
	}
	for i, c := range a.Competitors {
		line := CompetitorLine{Name: c.Name, Rating: c.Rating, Reviews: c.ReviewCount, Photos: c.PhotoCount}
		if i < len(a.CompetitorScores) {
			line.Score = a.CompetitorScores[i]
		}
		s.Competitors = append(s.Competitors, line)
	}
	return s
}

// WriteAnalysis writes a in the configured format. An empty format means
// table.
func WriteAnalysis(w io.Writer, a *model.Analysis, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(Summarize(a)); err != nil {
			return eris.Wrap(err, "outwriter: write json")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Summarize(a)); err != nil {
			return eris.Wrap(err, "outwriter: write yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "outwriter: write yaml")
		}
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := writeCSV(cw, a); err != nil {
			return eris.Wrap(err, "outwriter: write csv")
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return eris.Wrap(err, "outwriter: write csv")
		}
	case FormatTable, "":
		if err := writeTable(w, a, opts.UseColors); err != nil {
			return eris.Wrap(err, "outwriter: write table")
		}
	default:
		return eris.Errorf("outwriter: unknown format %q", opts.Format)
	}
	return nil
}

// writeCSV writes one row per sub-score followed by the total.
func writeCSV(w *csv.Writer, a *model.Analysis) error {
	s := Summarize(a)
	if err := w.Write([]string{"business", "metric", "score", "max"}); err != nil {
		return err
	}
	for _, m := range model.Metrics {
		if err := w.Write([]string{s.Business, m, formatFloat(s.SubScores[m]), formatFloat(s.MaxScores[m])}); err != nil {
			return err
		}
	}
	return w.Write([]string{s.Business, "total", strconv.Itoa(s.Total), strconv.Itoa(scorer.MaxTotal)})
}

func writeTable(w io.Writer, a *model.Analysis, useColors bool) error {
	s := Summarize(a)
	paint := painter(useColors)

	if _, err := fmt.Fprintf(w, "%s\n", s.Business); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Visibility score: %s (grade %s)\n\n",
		paint(bandFor(float64(s.Total), float64(scorer.MaxTotal)), fmt.Sprintf("%d/100", s.Total)), s.Grade); err != nil {
		return err
	}

	breakdown := tablewriter.NewWriter(w)
	breakdown.Header([]string{"Metric", "Score", "Max"})
	breakdown.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var rows [][]string
	for _, m := range model.Metrics {
		score, ceiling := s.SubScores[m], s.MaxScores[m]
		rows = append(rows, []string{m, paint(bandFor(score, ceiling), formatFloat(score)), formatFloat(ceiling)})
	}
	if err := breakdown.Bulk(rows); err != nil {
		return err
	}
	if err := breakdown.Render(); err != nil {
		return err
	}

	if len(s.Competitors) > 0 {
		if _, err := fmt.Fprintf(w, "\nCompetitors (median reviews %s, %d scoring higher):\n",
			formatFloat(s.CompetitorMedian), s.CompetitorsBeating); err != nil {
			return err
		}
		comps := tablewriter.NewWriter(w)
		comps.Header([]string{"Business", "Rating", "Reviews", "Photos", "Score"})
		var crows [][]string
		for _, c := range s.Competitors {
			crows = append(crows, []string{
				c.Name, formatFloat(c.Rating), strconv.Itoa(c.Reviews), strconv.Itoa(c.Photos), strconv.Itoa(c.Score),
			})
		}
		if err := comps.Bulk(crows); err != nil {
			return err
		}
		if err := comps.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "\nRecommendations:"); err != nil {
		return err
	}
	for i, tip := range s.Recommendations {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, tip); err != nil {
			return err
		}
	}
	if s.Token != "" {
		if _, err := fmt.Fprintf(w, "\nResult token: %s\n", s.Token); err != nil {
			return err
		}
	}
	return nil
}

type band int

const (
	bandLow band = iota
	bandMid
	bandHigh
)

func bandFor(score, ceiling float64) band {
	pct := 0.0
	if ceiling > 0 {
		pct = score / ceiling
	}
	switch {
	case pct >= 0.7:
		return bandHigh
	case pct >= 0.4:
		return bandMid
	default:
		return bandLow
	}
}

// painter returns a function colouring text by band, or leaving it as is.
func painter(useColors bool) func(band, string) string {
	if !useColors {
		return func(_ band, s string) string { return s }
	}
	colours := map[band]*color.Color{
		bandHigh: color.New(color.FgGreen, color.Bold),
		bandMid:  color.New(color.FgYellow),
		bandLow:  color.New(color.FgRed, color.Bold),
	}
	return func(b band, s string) string {
		c := colours[b]
		c.EnableColor()
		return c.Sprint(s)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
