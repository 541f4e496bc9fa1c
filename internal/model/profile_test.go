package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_ClampsRanges(t *testing.T) {
	p := BusinessProfile{
		Rating:           7.2,
		ReviewCount:      -4,
		PhotoCount:       14,
		ReviewsReturned:  3,
		ReviewsResponded: 5,
	}.Sanitize()

	assert.InDelta(t, 5.0, p.Rating, 0.001)
	assert.Equal(t, 0, p.ReviewCount)
	assert.Equal(t, 10, p.PhotoCount)
	assert.True(t, p.PhotoCountCapped)
	assert.Equal(t, 3, p.ReviewsResponded)
}

func TestSanitize_ZeroValueIsValid(t *testing.T) {
	p := BusinessProfile{}.Sanitize()
	assert.Equal(t, BusinessProfile{}, p)
}

func TestSanitize_CopiesTypes(t *testing.T) {
	types := []string{"dentist", "health"}
	p := BusinessProfile{Types: types}.Sanitize()
	p.Types[0] = "changed"
	assert.Equal(t, "dentist", types[0])
}

func TestCompleteness_Count(t *testing.T) {
	assert.Equal(t, 0, Completeness{}.Count())
	assert.Equal(t, 2, Completeness{Website: true, Hours: true}.Count())
	assert.Equal(t, 4, Completeness{Website: true, Phone: true, Hours: true, SpecificCategories: true}.Count())
}

func TestScoreResult_SubScore(t *testing.T) {
	r := ScoreResult{RatingScore: 30, ReviewsScore: 26, PhotosScore: 8, CompletenessScore: 12, DescriptionScore: 4, ResponseScore: 3}
	assert.InDelta(t, 26.0, r.SubScore(MetricReviews), 0.001)
	assert.InDelta(t, 0.0, r.SubScore("unknown"), 0.001)
	assert.InDelta(t, 83.0, r.SubScoreSum(), 0.001)
}

func TestLead_MissingFields(t *testing.T) {
	assert.Empty(t, Lead{FirstName: "Ada", Email: "a@b.se", BusinessName: "Bageri", City: "Lund"}.MissingFields())
	assert.Equal(t, []string{"email", "city"}, Lead{FirstName: "Ada", BusinessName: "Bageri"}.MissingFields())
}

func TestAnalysis_ExpiredAndPayload(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a := &Analysis{
		Lead:      Lead{FirstName: "Ada", Email: "a@b.se", Phone: "070", BusinessName: "Bageri", City: "Lund"},
		Scores:    ScoreResult{Total: 72, Grade: GradeB, RatingScore: 30},
		ExpiresAt: now.Add(time.Hour),
	}
	assert.False(t, a.Expired(now))
	assert.True(t, a.Expired(now.Add(time.Hour)))
	assert.False(t, (&Analysis{}).Expired(now), "zero expiry never expires")

	p := a.Payload()
	assert.Equal(t, 72, p.Score)
	assert.Equal(t, GradeB, p.Grade)
	assert.Equal(t, "Bageri", p.BusinessName)
}

func TestAnalysis_HasReport(t *testing.T) {
	a := &Analysis{Reports: map[string]Report{"html": {Data: []byte("<html>")}, "xlsx": {}}}
	assert.True(t, a.HasReport("html"))
	assert.False(t, a.HasReport("xlsx"))
	assert.False(t, a.HasReport("pdf"))
}

func TestDecodeProfile_Valid(t *testing.T) {
	p, err := DecodeProfile([]byte(`{"name":"Bageri","rating":4.4,"review_count":12,"photo_count":10,"has_phone":true}`))
	require.NoError(t, err)
	assert.Equal(t, "Bageri", p.Name)
	assert.Equal(t, 12, p.ReviewCount)
	assert.True(t, p.PhotoCountCapped)
	assert.True(t, p.HasPhone)
}

func TestDecodeProfile_MissingFieldsAllowed(t *testing.T) {
	p, err := DecodeProfile([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, BusinessProfile{}, p)
}

func TestDecodeProfile_SchemaViolation(t *testing.T) {
	_, err := DecodeProfile([]byte(`{"rating":9,"review_count":"many"}`))
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Len(t, schemaErr.Violations, 2)
}

func TestDecodeScoreRequest(t *testing.T) {
	req, err := DecodeScoreRequest([]byte(`{
		"business": {"name": "Bageri", "review_count": 10},
		"competitors": [{"name": "Konditori", "review_count": 40}],
		"top_competitor_name": "Konditori"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Bageri", req.Business.Name)
	require.Len(t, req.Competitors, 1)
	assert.Equal(t, 40, req.Competitors[0].ReviewCount)
	assert.Equal(t, "Konditori", req.TopCompetitorName)
}

func TestDecodeScoreRequest_RequiresBusiness(t *testing.T) {
	_, err := DecodeScoreRequest([]byte(`{"competitors": []}`))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
}

func TestReviewCounts(t *testing.T) {
	assert.Equal(t, []int{3, 1}, ReviewCounts([]BusinessProfile{{ReviewCount: 3}, {ReviewCount: 1}}))
	assert.Empty(t, ReviewCounts(nil))
}
