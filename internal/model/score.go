package model

// Grade is the letter bucket derived from a total score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Metric keys, shared by ScoreResult.MaxScores and report layouts.
const (
	MetricRating       = "rating_score"
	MetricReviews      = "reviews_score"
	MetricPhotos       = "photos_score"
	MetricCompleteness = "completeness_score"
	MetricDescription  = "description_score"
	MetricResponse     = "response_score"
)

// Metrics lists the metric keys in presentation order.
var Metrics = []string{
	MetricRating,
	MetricReviews,
	MetricPhotos,
	MetricCompleteness,
	MetricDescription,
	MetricResponse,
}

// Completeness records which standard profile fields are populated.
type Completeness struct {
	Website            bool `json:"website"`
	Phone              bool `json:"phone"`
	Hours              bool `json:"hours"`
	SpecificCategories bool `json:"specific_categories"`
}

// Count returns the number of populated fields.
func (c Completeness) Count() int {
	n := 0
	for _, ok := range []bool{c.Website, c.Phone, c.Hours, c.SpecificCategories} {
		if ok {
			n++
		}
	}
	return n
}

// ScoreResult is the outcome of scoring one business. It is built once per
// request and never mutated afterwards.
type ScoreResult struct {
	RatingScore       float64 `json:"rating_score"`
	ReviewsScore      float64 `json:"reviews_score"`
	PhotosScore       float64 `json:"photos_score"`
	CompletenessScore float64 `json:"completeness_score"`
	DescriptionScore  float64 `json:"description_score"`
	ResponseScore     float64 `json:"response_score"`

	Total int   `json:"total"`
	Grade Grade `json:"grade"`

	// CompetitorAvgReviews is the median competitor review count. It is
	// reported to the user but does not feed any sub-score.
	CompetitorAvgReviews float64 `json:"competitor_avg_reviews"`

	Completeness    Completeness       `json:"completeness"`
	Recommendations []string           `json:"recommendations"`
	MaxScores       map[string]float64 `json:"max_scores"`
}

// SubScore returns the sub-score for a metric key, or 0 for unknown keys.
func (r ScoreResult) SubScore(metric string) float64 {
	switch metric {
	case MetricRating:
		return r.RatingScore
	case MetricReviews:
		return r.ReviewsScore
	case MetricPhotos:
		return r.PhotosScore
	case MetricCompleteness:
		return r.CompletenessScore
	case MetricDescription:
		return r.DescriptionScore
	case MetricResponse:
		return r.ResponseScore
	default:
		return 0
	}
}

// SubScoreSum adds the six sub-scores.
func (r ScoreResult) SubScoreSum() float64 {
	return r.RatingScore + r.ReviewsScore + r.PhotosScore +
		r.CompletenessScore + r.DescriptionScore + r.ResponseScore
}
