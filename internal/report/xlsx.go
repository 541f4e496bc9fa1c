package report

import (
	"bytes"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/visibility-cli/internal/model"
)

// Sheet names.
const (
	SheetSummary         = "Summary"
	SheetBreakdown       = "Breakdown"
	SheetCompetitors     = "Competitors"
	SheetRecommendations = "Recommendations"
)

// XLSX renders a as a workbook with one sheet per report section.
func XLSX(a *model.Analysis) ([]byte, error) {
	if a == nil {
		return nil, eris.New("report: nil analysis")
	}

	f := xlsx.NewFile()

	summary, err := f.AddSheet(SheetSummary)
	if err != nil {
		return nil, eris.Wrap(err, "report: add summary sheet")
	}
	date := a.CreatedAt
	if date.IsZero() {
		date = time.Now()
	}
	addStrings(summary, "Business", a.Business.Name)
	addStrings(summary, "Address", a.Business.Address)
	addStrings(summary, "City", a.Lead.City)
	addNumber(summary, "Total Score", float64(a.Scores.Total))
	addStrings(summary, "Grade", string(a.Scores.Grade))
	addNumber(summary, "Rating", a.Business.Rating)
	addNumber(summary, "Reviews", float64(a.Business.ReviewCount))
	addNumber(summary, "Competitor Median Reviews", a.Scores.CompetitorAvgReviews)
	addNumber(summary, "Competitors Beating You", float64(a.CompetitorsBeating))
	addStrings(summary, "Top Competitor", a.TopCompetitorName)
	addStrings(summary, "Report Date", date.Format(time.DateOnly))

	bd, err := f.AddSheet(SheetBreakdown)
	if err != nil {
		return nil, eris.Wrap(err, "report: add breakdown sheet")
	}
	addStrings(bd, "Metric", "Score", "Max", "Percent", "Notes")
	for _, r := range breakdown(a.Scores) {
		row := bd.AddRow()
		row.AddCell().SetString(r.Label)
		row.AddCell().SetFloat(r.Score)
		row.AddCell().SetFloat(r.Max)
		row.AddCell().SetInt(r.Pct)
		row.AddCell().SetString(r.Note)
	}
	total := bd.AddRow()
	total.AddCell().SetString("Total")
	total.AddCell().SetInt(a.Scores.Total)
	total.AddCell().SetInt(100)

	comp, err := f.AddSheet(SheetCompetitors)
	if err != nil {
		return nil, eris.Wrap(err, "report: add competitors sheet")
	}
	addStrings(comp, "Business", "Rating", "Reviews", "Photos", "Description", "Score", "You")
	for _, c := range comparison(a) {
		row := comp.AddRow()
		row.AddCell().SetString(c.Name)
		row.AddCell().SetFloat(c.Rating)
		row.AddCell().SetInt(c.Reviews)
		row.AddCell().SetInt(c.Photos)
		row.AddCell().SetString(yesNo(c.HasDescription))
		row.AddCell().SetInt(c.Score)
		row.AddCell().SetString(yesNo(c.You))
	}

	recs, err := f.AddSheet(SheetRecommendations)
	if err != nil {
		return nil, eris.Wrap(err, "report: add recommendations sheet")
	}
	addStrings(recs, "#", "Recommendation")
	for i, tip := range a.Scores.Recommendations {
		row := recs.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(tip)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "report: write xlsx")
	}
	return buf.Bytes(), nil
}

func addStrings(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addNumber(sheet *xlsx.Sheet, label string, v float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetFloat(v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
