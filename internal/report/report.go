// Package report renders a completed analysis as downloadable documents.
package report

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/scorer"
)

// Supported formats.
const (
	FormatHTML = "html"
	FormatXLSX = "xlsx"
)

// Content types per format.
var contentTypes = map[string]string{
	FormatHTML: "text/html; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Score band colours.
const (
	colourGreen  = "#2ECC71"
	colourYellow = "#F39C12"
	colourRed    = "#E74C3C"
	colourCyan   = "#00B4D8"
	colourOrange = "#FF7043"
	colourGrey   = "#8E9AAB"
)

// metricInfo describes one breakdown row.
type metricInfo struct {
	Label string
	Note  string
}

var metricInfos = map[string]metricInfo{
	model.MetricRating:       {"Rating", "Based on your Google star rating"},
	model.MetricReviews:      {"Review Volume", "Number of Google reviews"},
	model.MetricPhotos:       {"Photo Count", "Number of photos on your Google Business Profile"},
	model.MetricCompleteness: {"Profile Completeness", "Website, phone, opening hours and specific categories"},
	model.MetricDescription:  {"Business Description", "Google editorial summary / business description"},
	model.MetricResponse:     {"Review Response Rate", "Share of recent reviews you have responded to"},
}

// Formats lists the supported formats in rendering order.
func Formats() []string {
	return []string{FormatHTML, FormatXLSX}
}

// Supported reports whether format can be rendered.
func Supported(format string) bool {
	_, ok := contentTypes[format]
	return ok
}

// Filename returns the download name for a business report.
func Filename(businessName, format string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ' ':
			return '_'
		case '/', '\\', '"', '\'', ':', '*', '?', '<', '>', '|':
			return -1
		}
		return r
	}, strings.TrimSpace(businessName))
	if name == "" {
		name = "Business"
	}
	return "Visibility_Report_" + name + "." + format
}

// Render renders a in one format.
func Render(a *model.Analysis, format string) (model.Report, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatHTML:
		data, err = HTML(a)
	case FormatXLSX:
		data, err = XLSX(a)
	default:
		return model.Report{}, ErrUnsupportedFormat
	}
	if err != nil {
		return model.Report{}, err
	}
	return model.Report{
		Filename:    Filename(a.Business.Name, format),
		ContentType: contentTypes[format],
		Data:        data,
	}, nil
}

// RenderAll renders every format. A failing format is logged and left out.
func RenderAll(a *model.Analysis) map[string]model.Report {
	out := make(map[string]model.Report, len(contentTypes))
	for _, f := range Formats() {
		r, err := Render(a, f)
		if err != nil {
			zap.L().Error("report: render failed",
				zap.String("format", f),
				zap.String("business", a.Business.Name),
				zap.Error(err),
			)
			continue
		}
		out[f] = r
	}
	return out
}

// ScoreColour returns the band colour of a sub-score relative to its max.
func ScoreColour(score, maxScore float64) string {
	pct := 0.0
	if maxScore > 0 {
		pct = score / maxScore
	}
	switch {
	case pct >= 0.7:
		return colourGreen
	case pct >= 0.4:
		return colourYellow
	default:
		return colourRed
	}
}

// GradeColour returns the display colour of a grade.
func GradeColour(g model.Grade) string {
	switch g {
	case model.GradeA:
		return colourGreen
	case model.GradeB:
		return colourCyan
	case model.GradeC:
		return colourYellow
	case model.GradeD:
		return colourOrange
	case model.GradeF:
		return colourRed
	default:
		return colourGrey
	}
}

// breakdownRow is one rendered score breakdown line.
type breakdownRow struct {
	Key    string
	Label  string
	Note   string
	Score  float64
	Max    float64
	Colour string
	Pct    int
}

func breakdown(r model.ScoreResult) []breakdownRow {
	maxScores := r.MaxScores
	if len(maxScores) == 0 {
		maxScores = scorer.MaxScores()
	}
	rows := make([]breakdownRow, 0, len(model.Metrics))
	for _, key := range model.Metrics {
		score, ceiling := r.SubScore(key), maxScores[key]
		pct := 0
		if ceiling > 0 {
			pct = int(score / ceiling * 100)
		}
		rows = append(rows, breakdownRow{
			Key:    key,
			Label:  metricInfos[key].Label,
			Note:   metricInfos[key].Note,
			Score:  score,
			Max:    ceiling,
			Colour: ScoreColour(score, ceiling),
			Pct:    min(max(pct, 0), 100),
		})
	}
	return rows
}

// competitorRow is one line of the competitor comparison.
type competitorRow struct {
	Name           string
	Rating         float64
	Reviews        int
	Photos         int
	HasDescription bool
	Score          int
	You            bool
}

func comparison(a *model.Analysis) []competitorRow {
	rows := []competitorRow{{
		Name:           a.Business.Name,
		Rating:         a.Business.Rating,
		Reviews:        a.Business.ReviewCount,
		Photos:         a.Business.PhotoCount,
		HasDescription: a.Business.HasDescription,
		Score:          a.Scores.Total,
		You:            true,
	}}
	for i, c := range a.Competitors {
		score := 0
		if i < len(a.CompetitorScores) {
			score = a.CompetitorScores[i]
		}
		rows = append(rows, competitorRow{
			Name:           c.Name,
			Rating:         c.Rating,
			Reviews:        c.ReviewCount,
			Photos:         c.PhotoCount,
			HasDescription: c.HasDescription,
			Score:          score,
		})
	}
	return rows
}
