package analysis

import (
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/scorer"
)

// Evaluate scores a business against an already-filtered competitor set and
// fills the comparison fields of an Analysis. It performs no I/O.
//
// Competitors are scored without a comparison set of their own. The top
// competitor is the highest scorer, the earliest one on a tie.
func Evaluate(business model.BusinessProfile, competitors []model.BusinessProfile) *model.Analysis {
	a := &model.Analysis{
		Business:         business,
		Competitors:      competitors,
		CompetitorScores: make([]int, len(competitors)),
	}

	topIdx := -1
	for i, c := range competitors {
		a.CompetitorScores[i] = scorer.Score(c, nil, "").Total
		if topIdx < 0 || a.CompetitorScores[i] > a.CompetitorScores[topIdx] {
			topIdx = i
		}
	}

	var top *model.BusinessProfile
	if topIdx >= 0 {
		top = &competitors[topIdx]
		a.TopCompetitorName = top.Name
	}

	a.Scores = scorer.Score(business, competitors, a.TopCompetitorName)

	for _, s := range a.CompetitorScores {
		if s > a.Scores.Total {
			a.CompetitorsBeating++
		}
	}
	a.ReviewRatioText = ReviewRatioText(business, top)
	return a
}
