package scorer

import (
	"fmt"

	"github.com/sells-group/visibility-cli/internal/model"
)

// Recommendation thresholds.
const (
	ratingThreshold   = 15.0
	reviewsThreshold  = 17.0
	responseThreshold = 3.0

	// photosThreshold is 60% of the photo ceiling.
	photosThreshold = MaxPhotos * 0.6
)

// genericCompetitor stands in for the top competitor when none is known.
const genericCompetitor = "your competitors"

// FallbackRecommendation is emitted when no rule fires.
const FallbackRecommendation = "Your profile is performing well! Keep a steady review campaign going " +
	"and keep your business information up to date."

// rule appends one recommendation when applies holds. The order of rules is
// the order recommendations are presented in.
type rule struct {
	name    string
	applies func(r model.ScoreResult) bool
	text    func(competitor string) string
}

func static(s string) func(string) string {
	return func(string) string { return s }
}

var rules = []rule{
	{
		name:    "rating",
		applies: func(r model.ScoreResult) bool { return r.RatingScore < ratingThreshold },
		text: static("Your star rating is below average. Actively ask satisfied customers for " +
			"5-star reviews and handle negative feedback quickly and professionally."),
	},
	{
		name:    "reviews",
		applies: func(r model.ScoreResult) bool { return r.ReviewsScore < reviewsThreshold },
		text: func(competitor string) string {
			return fmt.Sprintf("You have fewer reviews than %s. Run a review campaign: a short SMS "+
				"or email after each visit works very well.", competitor)
		},
	},
	{
		name:    "photos",
		applies: func(r model.ScoreResult) bool { return r.PhotosScore < photosThreshold },
		text: func(competitor string) string {
			return fmt.Sprintf("Your Google profile needs more photos. Upload high-quality pictures of "+
				"your premises, interior, staff and products to stand out against %s.", competitor)
		},
	},
	{
		name:    "website",
		applies: func(r model.ScoreResult) bool { return !r.Completeness.Website },
		text: static("Add your website to your Google Business Profile so customers can learn more " +
			"about you before they visit."),
	},
	{
		name:    "phone",
		applies: func(r model.ScoreResult) bool { return !r.Completeness.Phone },
		text: static("Add a phone number to your Google Business Profile. Many customers call " +
			"directly from the search results."),
	},
	{
		name:    "hours",
		applies: func(r model.ScoreResult) bool { return !r.Completeness.Hours },
		text: static("Publish your opening hours. Profiles without hours lose visitors who are " +
			"unsure whether you are open."),
	},
	{
		name:    "categories",
		applies: func(r model.ScoreResult) bool { return !r.Completeness.SpecificCategories },
		text: func(competitor string) string {
			return fmt.Sprintf("Choose a specific primary category and relevant secondary categories "+
				"so you appear in the same searches as %s.", competitor)
		},
	},
	{
		// Unreachable while DescriptionScore is constant; kept for when a
		// reliable description signal exists.
		name:    "description",
		applies: func(r model.ScoreResult) bool { return r.DescriptionScore == 0 },
		text: static("You are missing a business description. Add a keyword-rich description to " +
			"your Google Business Profile to improve relevance in search results."),
	},
	{
		name:    "response",
		applies: func(r model.ScoreResult) bool { return r.ResponseScore < responseThreshold },
		text: static("Reply to every customer review, positive and negative. Businesses that " +
			"respond regularly rank higher in local search and earn customer trust."),
	},
}

// Recommendations evaluates the rule list against a scored result and returns
// the triggered recommendations in rule order. It never returns an empty
// slice.
func Recommendations(r model.ScoreResult, topCompetitorName string) []string {
	competitor := topCompetitorName
	if competitor == "" {
		competitor = genericCompetitor
	}

	var tips []string
	for _, rl := range rules {
		if rl.applies(r) {
			tips = append(tips, rl.text(competitor))
		}
	}

	if len(tips) == 0 {
		tips = append(tips, FallbackRecommendation)
	}
	return tips
}

// RuleNames returns the rule names in evaluation order.
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, rl := range rules {
		names[i] = rl.name
	}
	return names
}
