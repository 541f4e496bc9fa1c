package scorer

import (
	"math"
	"slices"

	"github.com/sells-group/visibility-cli/internal/model"
)

// reviewSteps maps minimum review counts to points, highest first. The
// thresholds are absolute on purpose: a ratio against competitors was
// distorted by large chains.
var reviewSteps = []struct {
	min    int
	points float64
}{
	{200, 30},
	{100, 26},
	{50, 21},
	{30, 17},
	{20, 12},
	{10, 7},
	{1, 3},
}

// Score computes the visibility score of business benchmarked against
// competitors. topCompetitorName personalizes recommendations; pass "" when
// there is none.
func Score(business model.BusinessProfile, competitors []model.BusinessProfile, topCompetitorName string) model.ScoreResult {
	completeness := model.Completeness{
		Website:            business.HasWebsite,
		Phone:              business.HasPhone,
		Hours:              business.HasHours,
		SpecificCategories: business.HasSpecificCategories,
	}

	result := model.ScoreResult{
		RatingScore:          RatingScore(business.Rating),
		ReviewsScore:         ReviewsScore(business.ReviewCount),
		PhotosScore:          PhotosScore(business.PhotoCount),
		CompletenessScore:    CompletenessScore(completeness),
		DescriptionScore:     DescriptionScore(business.HasDescription),
		ResponseScore:        ResponseScore(business.ReviewsResponded, business.ReviewsReturned),
		CompetitorAvgReviews: Median(model.ReviewCounts(competitors)),
		Completeness:         completeness,
		MaxScores:            MaxScores(),
	}

	result.Total = Total(result)
	result.Grade = GradeFor(result.Total)
	result.Recommendations = Recommendations(result, topCompetitorName)
	return result
}

// RatingScore maps a 0-5 star rating onto 0-35 points.
func RatingScore(rating float64) float64 {
	if rating <= 0 {
		return 0
	}
	return round1(math.Min(rating, model.MaxRating) / model.MaxRating * MaxRating)
}

// ReviewsScore maps an absolute review count onto 0-30 points.
func ReviewsScore(reviewCount int) float64 {
	for _, s := range reviewSteps {
		if reviewCount >= s.min {
			return s.points
		}
	}
	return 0
}

// PhotosScore maps a photo count onto 0-10 points.
func PhotosScore(photoCount int) float64 {
	if photoCount <= 0 {
		return 0
	}
	return round1(math.Min(float64(photoCount)/model.MaxPhotoCount, 1) * MaxPhotos)
}

// CompletenessScore awards 4 points per populated completeness field.
func CompletenessScore(c model.Completeness) float64 {
	return float64(c.Count()) * completenessPoints
}

// DescriptionScore always awards the full 4 points. The upstream signal is an
// editorial summary rather than the owner's description, so it cannot be
// used to discriminate.
func DescriptionScore(bool) float64 {
	return MaxDescription
}

// ResponseScore maps the share of sampled reviews with an owner response onto
// 0-6 points. The ratio is over the reviews the upstream returned, not over
// every review the business has.
func ResponseScore(responded, returned int) float64 {
	if returned <= 0 || responded <= 0 {
		return 0
	}
	rate := math.Min(float64(responded)/float64(returned), 1)
	return round1(rate * MaxResponse)
}

// Total floors the sum of the sub-scores and clamps it to [0, 100]. Sub-scores
// carry one decimal, so the sum is rounded to one decimal before flooring.
func Total(r model.ScoreResult) int {
	total := int(math.Floor(round1(r.SubScoreSum())))
	return min(max(total, 0), MaxTotal)
}

// GradeFor maps a total score onto a letter grade.
func GradeFor(total int) model.Grade {
	switch {
	case total >= 85:
		return model.GradeA
	case total >= 70:
		return model.GradeB
	case total >= 55:
		return model.GradeC
	case total >= 40:
		return model.GradeD
	default:
		return model.GradeF
	}
}

// Median returns the median of counts, or 0 when counts is empty. The median
// keeps a single very large competitor from skewing the benchmark.
func Median(counts []int) float64 {
	n := len(counts)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(counts)
	slices.Sort(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
