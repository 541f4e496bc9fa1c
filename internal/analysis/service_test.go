package analysis_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visibility-cli/internal/analysis"
	"github.com/sells-group/visibility-cli/internal/analysis/mocks"
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/places"
	"github.com/sells-group/visibility-cli/internal/report"
	"github.com/sells-group/visibility-cli/internal/store"
)

type fakeDispatcher struct {
	mu  sync.Mutex
	got []model.NotificationPayload
}

func (f *fakeDispatcher) Dispatch(p model.NotificationPayload) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, p)
	return true
}

func testLead() model.Lead {
	return model.Lead{
		FirstName:    " Anna ",
		Email:        "anna@example.com",
		Phone:        "+46701234567",
		BusinessName: "Café Nord",
		City:         "Umeå",
	}
}

func lookupResult() *places.Result {
	return &places.Result{
		Business: model.BusinessProfile{
			PlaceID: "p-self", Name: "Café Nord", Rating: 4.2, ReviewCount: 40,
			PhotoCount: 4, HasWebsite: true, HasPhone: true,
		},
		Competitors: []model.BusinessProfile{
			{PlaceID: "p-1", Name: "Bageri Ett", Rating: 4.8, ReviewCount: 200, PhotoCount: 10,
				HasWebsite: true, HasPhone: true, HasHours: true, HasSpecificCategories: true, HasDescription: true},
			{PlaceID: "p-2", Name: "Kafé Två", Rating: 3.9, ReviewCount: 12, PhotoCount: 1},
		},
		Candidates: 3,
	}
}

func TestAnalyze(t *testing.T) {
	looker := mocks.NewMockLooker(t)
	looker.On("Lookup", mock.Anything, "Café Nord", "Umeå").Return(lookupResult(), nil)

	st := store.NewMemory(10)
	disp := &fakeDispatcher{}
	svc := analysis.New(looker, st, disp, analysis.WithTTL(time.Hour))

	a, err := svc.Analyze(context.Background(), testLead())
	require.NoError(t, err)

	assert.Len(t, a.Token, 32)
	assert.Equal(t, "Anna", a.Lead.FirstName)
	assert.Equal(t, "Bageri Ett", a.TopCompetitorName)
	require.Len(t, a.CompetitorScores, 2)
	assert.Greater(t, a.CompetitorScores[0], a.CompetitorScores[1])
	assert.Equal(t, 1, a.CompetitorsBeating)
	assert.Equal(t, "5x more customers from Google", a.ReviewRatioText)
	assert.True(t, a.HasReport(report.FormatHTML))
	assert.True(t, a.HasReport(report.FormatXLSX))
	assert.False(t, a.ExpiresAt.IsZero())

	require.Len(t, disp.got, 1)
	assert.Equal(t, a.Scores.Total, disp.got[0].Score)
	assert.Equal(t, "Café Nord", disp.got[0].BusinessName)

	stored, err := svc.Get(context.Background(), a.Token)
	require.NoError(t, err)
	assert.Equal(t, a.Scores.Total, stored.Scores.Total)
}

func TestAnalyze_InvalidLead(t *testing.T) {
	looker := mocks.NewMockLooker(t)
	svc := analysis.New(looker, store.NewMemory(10), nil)

	_, err := svc.Analyze(context.Background(), model.Lead{FirstName: "Anna", City: "  "})
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrInvalidLead)
	assert.Contains(t, err.Error(), "email, business_name, city")
	looker.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_NotFound(t *testing.T) {
	looker := mocks.NewMockLooker(t)
	looker.On("Lookup", mock.Anything, mock.Anything, mock.Anything).Return(nil, places.ErrBusinessNotFound)

	disp := &fakeDispatcher{}
	_, err := analysis.New(looker, store.NewMemory(10), disp).Analyze(context.Background(), testLead())
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrBusinessNotFound)
	assert.Contains(t, analysis.UserMessage(err), "could not find your business")
	assert.Empty(t, disp.got)
}

func TestAnalyze_Upstream(t *testing.T) {
	looker := mocks.NewMockLooker(t)
	looker.On("Lookup", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("places: text search: 503"))

	_, err := analysis.New(looker, store.NewMemory(10), nil).Analyze(context.Background(), testLead())
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrUpstream)
	assert.False(t, errors.Is(err, analysis.ErrBusinessNotFound))
	assert.Contains(t, analysis.UserMessage(err), "error connecting to Google Places")
}

func TestAnalyze_RenderFailureKeepsResult(t *testing.T) {
	looker := mocks.NewMockLooker(t)
	looker.On("Lookup", mock.Anything, mock.Anything, mock.Anything).Return(lookupResult(), nil)

	svc := analysis.New(looker, store.NewMemory(10), nil, analysis.WithRenderer(func(*model.Analysis) map[string]model.Report {
		return map[string]model.Report{}
	}))

	a, err := svc.Analyze(context.Background(), testLead())
	require.NoError(t, err)
	assert.False(t, a.HasReport(report.FormatHTML))
	assert.NotEmpty(t, a.Token)
}

func TestAnalyze_NoCompetitors(t *testing.T) {
	res := lookupResult()
	res.Competitors = nil

	looker := mocks.NewMockLooker(t)
	looker.On("Lookup", mock.Anything, mock.Anything, mock.Anything).Return(res, nil)

	a, err := analysis.New(looker, store.NewMemory(10), nil).Analyze(context.Background(), testLead())
	require.NoError(t, err)
	assert.Empty(t, a.TopCompetitorName)
	assert.Zero(t, a.CompetitorsBeating)
	assert.Equal(t, analysis.DefaultReviewRatioText, a.ReviewRatioText)
	assert.NotEmpty(t, a.Scores.Recommendations)
}

func TestAnalyze_ZeroTTLNeverExpires(t *testing.T) {
	looker := mocks.NewMockLooker(t)
	looker.On("Lookup", mock.Anything, mock.Anything, mock.Anything).Return(lookupResult(), nil)

	a, err := analysis.New(looker, store.NewMemory(10), nil, analysis.WithTTL(0)).Analyze(context.Background(), testLead())
	require.NoError(t, err)
	assert.True(t, a.ExpiresAt.IsZero())
}

func TestGet_Unknown(t *testing.T) {
	svc := analysis.New(mocks.NewMockLooker(t), store.NewMemory(10), nil)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestScoreProfile(t *testing.T) {
	svc := analysis.New(mocks.NewMockLooker(t), store.NewMemory(10), nil)

	a := svc.ScoreProfile(model.ScoreRequest{
		Business: model.BusinessProfile{Name: "Salong Hår", ReviewCount: 10, Rating: 6},
		Competitors: []model.BusinessProfile{
			{Name: "Chain", ReviewCount: 5000},
			{Name: "Big", ReviewCount: 400},
			{Name: "Mid", ReviewCount: 50},
			{Name: "Small", ReviewCount: 20},
		},
	})

	require.Len(t, a.Competitors, 2)
	assert.Equal(t, "Mid", a.Competitors[0].Name)
	assert.Equal(t, "Small", a.Competitors[1].Name)
	assert.InDelta(t, 5.0, a.Business.Rating, 0.001, "profile is sanitized")
	assert.Empty(t, a.Token)
}

func TestScoreProfile_ExplicitTopCompetitor(t *testing.T) {
	svc := analysis.New(mocks.NewMockLooker(t), store.NewMemory(10), nil)

	a := svc.ScoreProfile(model.ScoreRequest{
		Business:          model.BusinessProfile{Name: "Salong Hår"},
		Competitors:       []model.BusinessProfile{{Name: "Klipp", ReviewCount: 30}},
		TopCompetitorName: "Frisör X",
	})
	assert.Equal(t, "Frisör X", a.TopCompetitorName)
}
