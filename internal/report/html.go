package report

import (
	"bytes"
	"html/template"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/model"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"num": formatNumber,
}).Parse(reportHTML))

type htmlData struct {
	Title              string
	Date               string
	Business           model.BusinessProfile
	Scores             model.ScoreResult
	GradeColour        string
	Breakdown          []breakdownRow
	Competitors        []competitorRow
	CompetitorsBeating int
	ReviewRatioText    string
	TopCompetitorName  string
}

// HTML renders a as a printable multi-page HTML document.
func HTML(a *model.Analysis) ([]byte, error) {
	if a == nil {
		return nil, eris.New("report: nil analysis")
	}

	date := a.CreatedAt
	if date.IsZero() {
		date = time.Now()
	}

	data := htmlData{
		Title:              "Local Visibility Report: " + a.Business.Name,
		Date:               date.Format("January 2, 2006"),
		Business:           a.Business,
		Scores:             a.Scores,
		GradeColour:        GradeColour(a.Scores.Grade),
		Breakdown:          breakdown(a.Scores),
		Competitors:        comparison(a),
		CompetitorsBeating: a.CompetitorsBeating,
		ReviewRatioText:    a.ReviewRatioText,
		TopCompetitorName:  a.TopCompetitorName,
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, eris.Wrap(err, "report: execute html template")
	}
	return buf.Bytes(), nil
}

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #333; margin: 0; }
header { background: #0D1B2A; color: #00B4D8; padding: 8px 2cm; font-weight: bold; font-size: 9pt; }
header span { color: #fff; float: right; font-weight: normal; }
section { padding: 1cm 2cm; page-break-after: always; }
section:last-of-type { page-break-after: auto; }
h2 { color: #0D1B2A; border-bottom: 2px solid #00B4D8; padding-bottom: 4px; }
table { border-collapse: collapse; width: 100%; font-size: 9pt; }
th { background: #0D1B2A; color: #fff; text-align: left; }
th, td { border: 1px solid #DEE2E6; padding: 7px 8px; }
tr:nth-child(even) td { background: #F5F7FA; }
tr.you td { background: #E3F2FD; color: #1565C0; font-weight: bold; }
.score { width: 6cm; height: 6cm; border-radius: 50%; margin: 1cm auto 0; color: #fff;
  font-size: 72pt; font-weight: bold; display: flex; align-items: center; justify-content: center; }
.center { text-align: center; }
.muted { color: #8E9AAB; }
.bar { background: #EEE; height: 10px; width: 4.5cm; }
.bar div { height: 10px; }
.total { color: #fff; padding: 10px 12px; font-weight: bold; margin-top: 0.4cm; }
footer { text-align: center; color: #8E9AAB; font-size: 8pt; padding: 8px; background: #F5F7FA; }
</style>
</head>
<body>
<header>LOCAL VISIBILITY REPORT <span>Generated {{.Date}}</span></header>

<section id="cover">
  <div class="score" style="background: {{.GradeColour}}">{{.Scores.Total}}</div>
  <p class="center muted">out of 100</p>
  <p class="center">Grade: <b>{{.Scores.Grade}}</b></p>
  <table>
    <tr><th>Business</th><td>{{.Business.Name}}</td></tr>
    <tr><th>Address</th><td>{{with .Business.Address}}{{.}}{{else}}-{{end}}</td></tr>
    <tr><th>Rating</th><td>{{num .Business.Rating}} ★ ({{.Business.ReviewCount}} reviews)</td></tr>
    <tr><th>Report date</th><td>{{.Date}}</td></tr>
  </table>
  {{- if .TopCompetitorName}}
  <p>{{.CompetitorsBeating}} local competitor(s) score higher than you. {{.TopCompetitorName}} gets {{.ReviewRatioText}}.</p>
  {{- end}}
</section>

<section id="breakdown">
  <h2>Score Breakdown</h2>
  <table>
    <tr><th>Metric</th><th>Score</th><th>Max</th><th>Visual</th><th>Notes</th></tr>
    {{- range .Breakdown}}
    <tr>
      <td>{{.Label}}</td>
      <td style="color: {{.Colour}}"><b>{{num .Score}}</b></td>
      <td>{{num .Max}}</td>
      <td><div class="bar"><div style="width: {{.Pct}}%; background: {{.Colour}}"></div></div></td>
      <td class="muted">{{.Note}}</td>
    </tr>
    {{- end}}
  </table>
  <div class="total" style="background: {{.GradeColour}}">TOTAL VISIBILITY SCORE {{.Scores.Total}} / 100</div>
</section>

<section id="competitors">
  <h2>Local Competitor Comparison</h2>
  <p>How your Google Business Profile stacks up against your top local competitors:</p>
  <table>
    <tr><th>Business</th><th>Rating</th><th>Reviews</th><th>Photos</th><th>Description</th><th>Score</th></tr>
    {{- range .Competitors}}
    <tr{{if .You}} class="you"{{end}}>
      <td>{{.Name}}{{if .You}} ★ YOU{{end}}</td>
      <td>{{num .Rating}} ★</td>
      <td>{{.Reviews}}</td>
      <td>{{.Photos}}</td>
      <td>{{if .HasDescription}}Yes{{else}}No{{end}}</td>
      <td><b>{{.Score}}</b></td>
    </tr>
    {{- end}}
  </table>
  {{- if eq (len .Competitors) 1}}
  <p class="muted">No comparable local competitors were found.</p>
  {{- end}}
</section>

<section id="recommendations">
  <h2>Recommendations to Improve Your Score</h2>
  <p>Based on your current Google Business Profile performance, here are the highest-impact actions you can take to improve your local visibility:</p>
  <ol>
    {{- range .Scores.Recommendations}}
    <li>{{.}}</li>
    {{- end}}
  </ol>
</section>

<footer>Confidential | Local Visibility Report</footer>
</body>
</html>
`

// formatNumber prints v without trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
