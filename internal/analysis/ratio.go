package analysis

import (
	"fmt"

	"github.com/sells-group/visibility-cli/internal/model"
)

// DefaultReviewRatioText is used when the top competitor does not clearly
// out-review the business.
const DefaultReviewRatioText = "more customers from Google"

// ReviewRatioText describes how many more customers the top competitor wins
// from reviews than the business does.
func ReviewRatioText(business model.BusinessProfile, top *model.BusinessProfile) string {
	if top == nil {
		return DefaultReviewRatioText
	}
	own := max(business.ReviewCount, 1)
	if top.ReviewCount <= own {
		return DefaultReviewRatioText
	}

	ratio := float64(top.ReviewCount) / float64(own)
	switch {
	case ratio >= 3:
		return fmt.Sprintf("%dx more customers from Google", int(ratio))
	case ratio >= 2:
		return "twice as many customers from Google"
	case ratio >= 1.5:
		return "50% more customers from Google"
	default:
		return DefaultReviewRatioText
	}
}
