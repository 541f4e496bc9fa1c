package scorer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visibility-cli/internal/model"
)

func perfectProfile() model.BusinessProfile {
	return model.BusinessProfile{
		Name:                  "Perfect Bakery",
		Rating:                5,
		ReviewCount:           450,
		PhotoCount:            10,
		Types:                 []string{"bakery", "cafe", "food"},
		HasWebsite:            true,
		HasPhone:              true,
		HasHours:              true,
		HasSpecificCategories: true,
		HasDescription:        true,
		ReviewsReturned:       5,
		ReviewsResponded:      5,
	}
}

func TestRatingScore(t *testing.T) {
	tests := []struct {
		name   string
		rating float64
		want   float64
	}{
		{"zero", 0, 0},
		{"negative", -1, 0},
		{"max", 5, 35},
		{"above max clamped", 6, 35},
		{"four stars", 4, 28},
		{"four point three", 4.3, 30.1},
		{"one star", 1, 7},
		{"two point five", 2.5, 17.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RatingScore(tt.rating), 1e-9)
		})
	}
}

func TestRatingScore_MatchesFormula(t *testing.T) {
	for r := 0.1; r <= 5.0; r += 0.1 {
		assert.InDelta(t, round1(r/5*35), RatingScore(r), 1e-9, "rating %.1f", r)
	}
}

func TestReviewsScore_Boundaries(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{-3, 0},
		{0, 0},
		{1, 3},
		{9, 3},
		{10, 7},
		{19, 7},
		{20, 12},
		{29, 12},
		{30, 17},
		{49, 17},
		{50, 21},
		{99, 21},
		{100, 26},
		{199, 26},
		{200, 30},
		{100000, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReviewsScore(tt.count), "count %d", tt.count)
	}
}

func TestReviewsScore_Monotonic(t *testing.T) {
	prev := ReviewsScore(0)
	for n := 1; n <= 500; n++ {
		cur := ReviewsScore(n)
		assert.GreaterOrEqual(t, cur, prev, "count %d", n)
		prev = cur
	}
}

func TestReviewsScore_IgnoresCompetitors(t *testing.T) {
	b := model.BusinessProfile{ReviewCount: 40}
	small := Score(b, []model.BusinessProfile{{ReviewCount: 5}}, "")
	large := Score(b, []model.BusinessProfile{{ReviewCount: 5000}, {ReviewCount: 9000}}, "")
	assert.Equal(t, small.ReviewsScore, large.ReviewsScore)
	assert.Equal(t, small.Total, large.Total)
}

func TestPhotosScore(t *testing.T) {
	tests := []struct {
		photos int
		want   float64
	}{
		{0, 0},
		{-1, 0},
		{1, 1},
		{5, 5},
		{10, 10},
		{25, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhotosScore(tt.photos), "photos %d", tt.photos)
	}
}

func TestCompletenessScore_Values(t *testing.T) {
	allowed := map[float64]bool{0: true, 4: true, 8: true, 12: true, 16: true}
	for mask := range 16 {
		c := model.Completeness{
			Website:            mask&1 != 0,
			Phone:              mask&2 != 0,
			Hours:              mask&4 != 0,
			SpecificCategories: mask&8 != 0,
		}
		got := CompletenessScore(c)
		assert.True(t, allowed[got], "mask %d gave %v", mask, got)
		assert.Equal(t, float64(4*c.Count()), got)
	}
}

func TestDescriptionScore_Constant(t *testing.T) {
	assert.Equal(t, 4.0, DescriptionScore(true))
	assert.Equal(t, 4.0, DescriptionScore(false))
}

func TestResponseScore(t *testing.T) {
	tests := []struct {
		name                string
		responded, returned int
		want                float64
	}{
		{"none returned", 0, 0, 0},
		{"responded without returned", 3, 0, 0},
		{"none responded", 0, 5, 0},
		{"all responded", 5, 5, 6},
		{"three of five", 3, 5, 3.6},
		{"one of three", 1, 3, 2},
		{"ratio clamped", 7, 5, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ResponseScore(tt.responded, tt.returned), 1e-9)
		})
	}
}

func TestTotal_FloorsAndClamps(t *testing.T) {
	tests := []struct {
		name string
		r    model.ScoreResult
		want int
	}{
		{"zero", model.ScoreResult{}, 0},
		{"floors fraction", model.ScoreResult{RatingScore: 30.1, ReviewsScore: 21, PhotosScore: 4.9}, 56},
		{"exact sum", model.ScoreResult{RatingScore: 28, ReviewsScore: 12}, 40},
		{"float noise rounded", model.ScoreResult{RatingScore: 0.1, ReviewsScore: 0.2, ResponseScore: 69.7}, 70},
		{"clamped to 100", model.ScoreResult{
			RatingScore: 35, ReviewsScore: 30, PhotosScore: 10,
			CompletenessScore: 16, DescriptionScore: 4, ResponseScore: 6,
		}, 100},
		{"negative clamped to 0", model.ScoreResult{RatingScore: -5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Total(tt.r))
		})
	}
}

func TestGradeFor_Boundaries(t *testing.T) {
	tests := []struct {
		total int
		want  model.Grade
	}{
		{100, model.GradeA},
		{85, model.GradeA},
		{84, model.GradeB},
		{70, model.GradeB},
		{69, model.GradeC},
		{55, model.GradeC},
		{54, model.GradeD},
		{40, model.GradeD},
		{39, model.GradeF},
		{0, model.GradeF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.total), "total %d", tt.total)
	}
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 20.0, Median([]int{10, 20, 30}))
	assert.Equal(t, 15.0, Median([]int{10, 20}))
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 0.0, Median([]int{}))
	assert.Equal(t, 20.0, Median([]int{30, 10, 20}))
	assert.Equal(t, 45.0, Median([]int{5000, 40, 50, 3}))
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	in := []int{30, 10, 20}
	Median(in)
	assert.Equal(t, []int{30, 10, 20}, in)
}

func TestScore_PerfectProfile(t *testing.T) {
	got := Score(perfectProfile(), nil, "")

	assert.Equal(t, 35.0, got.RatingScore)
	assert.Equal(t, 30.0, got.ReviewsScore)
	assert.Equal(t, 10.0, got.PhotosScore)
	assert.Equal(t, 16.0, got.CompletenessScore)
	assert.Equal(t, 4.0, got.DescriptionScore)
	assert.Equal(t, 6.0, got.ResponseScore)
	assert.Equal(t, 100, got.Total)
	assert.Equal(t, model.GradeA, got.Grade)
	assert.Equal(t, []string{FallbackRecommendation}, got.Recommendations)
	assert.Equal(t, MaxScores(), got.MaxScores)
	assert.Equal(t, 0.0, got.CompetitorAvgReviews)
}

func TestScore_EmptyProfile(t *testing.T) {
	got := Score(model.BusinessProfile{}, nil, "")

	assert.Equal(t, 4, got.Total)
	assert.Equal(t, model.GradeF, got.Grade)
	assert.Zero(t, got.Completeness.Count())
	assert.Len(t, got.Recommendations, 8)
	assert.NotContains(t, got.Recommendations, FallbackRecommendation)
}

func TestScore_CompetitorMedian(t *testing.T) {
	comps := []model.BusinessProfile{{ReviewCount: 30}, {ReviewCount: 10}, {ReviewCount: 20}}
	got := Score(perfectProfile(), comps, "")
	assert.Equal(t, 20.0, got.CompetitorAvgReviews)
	assert.Equal(t, 100, got.Total)
}

func TestScore_TypicalProfile(t *testing.T) {
	b := model.BusinessProfile{
		Rating:                4.3,
		ReviewCount:           64,
		PhotoCount:            7,
		HasWebsite:            true,
		HasPhone:              true,
		HasHours:              true,
		HasSpecificCategories: false,
		ReviewsReturned:       5,
		ReviewsResponded:      2,
	}
	got := Score(b, nil, "Rival Café")

	// 30.1 + 21 + 7 + 12 + 4 + 2.4 = 76.5
	assert.Equal(t, 76, got.Total)
	assert.Equal(t, model.GradeB, got.Grade)
	require.Len(t, got.Recommendations, 2)
	assert.Contains(t, got.Recommendations[0], "Rival Café")
	assert.Contains(t, got.Recommendations[1], "Reply to every customer review")
}

func TestScore_Idempotent(t *testing.T) {
	b := perfectProfile()
	b.Rating = 3.7
	b.ReviewCount = 42
	b.HasHours = false
	comps := []model.BusinessProfile{{ReviewCount: 80}, {ReviewCount: 12}}

	first := Score(b, comps, "Rival")
	second := Score(b, comps, "Rival")
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	bb, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(bb))
}

func TestScore_ResultDoesNotShareMaxScores(t *testing.T) {
	first := Score(perfectProfile(), nil, "")
	first.MaxScores[model.MetricRating] = 0
	second := Score(perfectProfile(), nil, "")
	assert.Equal(t, MaxRating, second.MaxScores[model.MetricRating])
}

func TestRecommendations_Order(t *testing.T) {
	assert.Equal(t, []string{
		"rating", "reviews", "photos", "website", "phone", "hours",
		"categories", "description", "response",
	}, RuleNames())
}

func TestRecommendations_AllRulesExceptDescription(t *testing.T) {
	tips := Recommendations(model.ScoreResult{DescriptionScore: 4}, "")
	require.Len(t, tips, 8)
	assert.Contains(t, tips[0], "star rating")
	assert.Contains(t, tips[1], "your competitors")
	assert.Contains(t, tips[2], "photos")
	assert.Contains(t, tips[3], "website")
	assert.Contains(t, tips[4], "phone number")
	assert.Contains(t, tips[5], "opening hours")
	assert.Contains(t, tips[6], "category")
	assert.Contains(t, tips[7], "Reply")
}

func TestRecommendations_DescriptionRule(t *testing.T) {
	r := Score(perfectProfile(), nil, "")
	r.DescriptionScore = 0
	tips := Recommendations(r, "")
	require.Len(t, tips, 1)
	assert.Contains(t, tips[0], "business description")
}

func TestRecommendations_Thresholds(t *testing.T) {
	base := Score(perfectProfile(), nil, "")

	tests := []struct {
		name  string
		edit  func(r *model.ScoreResult)
		fires bool
	}{
		{"rating at threshold", func(r *model.ScoreResult) { r.RatingScore = 15 }, false},
		{"rating below threshold", func(r *model.ScoreResult) { r.RatingScore = 14.9 }, true},
		{"reviews at threshold", func(r *model.ScoreResult) { r.ReviewsScore = 17 }, false},
		{"reviews below threshold", func(r *model.ScoreResult) { r.ReviewsScore = 12 }, true},
		{"photos at threshold", func(r *model.ScoreResult) { r.PhotosScore = 6 }, false},
		{"photos below threshold", func(r *model.ScoreResult) { r.PhotosScore = 5 }, true},
		{"response at threshold", func(r *model.ScoreResult) { r.ResponseScore = 3 }, false},
		{"response below threshold", func(r *model.ScoreResult) { r.ResponseScore = 2.4 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.edit(&r)
			tips := Recommendations(r, "")
			require.NotEmpty(t, tips)
			if tt.fires {
				assert.NotEqual(t, FallbackRecommendation, tips[0])
			} else {
				assert.Equal(t, []string{FallbackRecommendation}, tips)
			}
		})
	}
}

func TestRecommendations_NeverEmpty(t *testing.T) {
	for _, rating := range []float64{0, 2, 4, 5} {
		for _, reviews := range []int{0, 15, 60, 300} {
			b := model.BusinessProfile{Rating: rating, ReviewCount: reviews}
			assert.NotEmpty(t, Score(b, nil, "").Recommendations)
		}
	}
}

func TestRecommendations_NoEmDashes(t *testing.T) {
	tips := Recommendations(model.ScoreResult{}, "Rival")
	tips = append(tips, FallbackRecommendation)
	for _, tip := range tips {
		assert.False(t, strings.ContainsRune(tip, '—'), tip)
	}
}

func TestValidateMaxScores(t *testing.T) {
	require.NoError(t, ValidateMaxScores(MaxScores()))
	assert.InDelta(t, 101.0, WeightSum(MaxScores()), 1e-9)

	missing := MaxScores()
	delete(missing, model.MetricPhotos)
	err := ValidateMaxScores(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photos_score missing")

	negative := MaxScores()
	negative[model.MetricDescription] = -4
	err = ValidateMaxScores(negative)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description_score must be >= 0")

	skewed := MaxScores()
	skewed[model.MetricRating] = 60
	err = ValidateMaxScores(skewed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights should sum to 100")
}
