// Package analysis runs a complete visibility analysis for a lead: lookup,
// scoring, report rendering, notification and storage.
package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/competitor"
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/monitoring"
	"github.com/sells-group/visibility-cli/internal/places"
	"github.com/sells-group/visibility-cli/internal/report"
	"github.com/sells-group/visibility-cli/internal/scorer"
	"github.com/sells-group/visibility-cli/internal/store"
)

var (
	// ErrBusinessNotFound is returned when the business has no matching listing.
	ErrBusinessNotFound = places.ErrBusinessNotFound

	// ErrUpstream is returned when the places lookup fails for any other reason.
	ErrUpstream = eris.New("analysis: upstream lookup failed")

	// ErrInvalidLead is returned when required lead fields are blank.
	ErrInvalidLead = eris.New("analysis: invalid lead")
)

// Looker finds a business and its filtered competitors.
type Looker interface {
	Lookup(ctx context.Context, name, city string) (*places.Result, error)
}

// Dispatcher queues a notification without blocking.
type Dispatcher interface {
	Dispatch(p model.NotificationPayload) bool
}

// Renderer renders every report format for an analysis.
type Renderer func(a *model.Analysis) map[string]model.Report

// Option configures a Service.
type Option func(*Service)

// WithTTL sets how long stored analyses stay retrievable. Zero keeps them
// until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithRenderer replaces the report renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.render = r
		}
	}
}

// WithCompetitorLimit sets how many competitors offline scoring keeps.
func WithCompetitorLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.competitorLimit = n
		}
	}
}

// Service runs analyses and serves stored results.
type Service struct {
	looker          Looker
	store           store.Store
	dispatcher      Dispatcher
	render          Renderer
	ttl             time.Duration
	competitorLimit int

	now      func() time.Time
	newToken func() string
}

// New creates a Service. dispatcher may be nil to skip notifications.
func New(looker Looker, st store.Store, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{
		looker:          looker,
		store:           st,
		dispatcher:      dispatcher,
		render:          report.RenderAll,
		ttl:             24 * time.Hour,
		competitorLimit: competitor.DefaultWant,
		now:             time.Now,
		newToken:        func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze looks up the lead's business, scores it against local
// competitors, renders its reports, notifies sinks and stores the result.
func (s *Service) Analyze(ctx context.Context, lead model.Lead) (*model.Analysis, error) {
	lead = trimLead(lead)
	if missing := lead.MissingFields(); len(missing) > 0 {
		return nil, eris.Wrapf(ErrInvalidLead, "missing %s", strings.Join(missing, ", "))
	}

	log := zap.L().With(
		zap.String("business", lead.BusinessName),
		zap.String("city", lead.City),
	)

	res, err := s.looker.Lookup(ctx, lead.BusinessName, lead.City)
	if err != nil {
		if errors.Is(err, places.ErrBusinessNotFound) {
			monitoring.AnalysesTotal.WithLabelValues(monitoring.OutcomeNotFound).Inc()
			return nil, eris.Wrapf(ErrBusinessNotFound, "%s in %s", lead.BusinessName, lead.City)
		}
		monitoring.AnalysesTotal.WithLabelValues(monitoring.OutcomeUpstream).Inc()
		log.Error("analysis: lookup failed", zap.Error(err))
		return nil, eris.Wrapf(ErrUpstream, "%v", err)
	}

	a := Evaluate(res.Business, res.Competitors)
	a.Lead = lead
	a.CreatedAt = s.now().UTC()
	monitoring.RecordScore(a.Scores.Total, string(a.Scores.Grade))

	a.Reports = s.render(a)

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(a.Payload())
	}

	a.Token = s.newToken()
	if err := s.store.Save(ctx, a, s.ttl); err != nil {
		monitoring.AnalysesTotal.WithLabelValues(monitoring.OutcomeFailed).Inc()
		return nil, eris.Wrap(err, "analysis: save result")
	}

	monitoring.AnalysesTotal.WithLabelValues(monitoring.OutcomeSuccess).Inc()
	log.Info("analysis: completed",
		zap.String("token", a.Token),
		zap.Int("score", a.Scores.Total),
		zap.String("grade", string(a.Scores.Grade)),
		zap.Int("competitors", len(a.Competitors)),
		zap.Int("candidates", res.Candidates),
		zap.Strings("reports", reportFormats(a)),
	)
	return a, nil
}

// Get returns a stored analysis or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, token string) (*model.Analysis, error) {
	return s.store.Get(ctx, token)
}

// ScoreProfile scores a profile against caller-supplied competitor
// candidates without any lookup or storage. The candidates go through the
// same chain filter as a live analysis.
func (s *Service) ScoreProfile(req model.ScoreRequest) *model.Analysis {
	business := req.Business.Sanitize()
	candidates := make([]model.BusinessProfile, len(req.Competitors))
	for i, c := range req.Competitors {
		candidates[i] = c.Sanitize()
	}

	a := Evaluate(business, competitor.Filter(candidates, business.ReviewCount, s.competitorLimit))
	if req.TopCompetitorName != "" {
		a.TopCompetitorName = req.TopCompetitorName
		a.Scores = scorer.Score(a.Business, a.Competitors, req.TopCompetitorName)
	}
	a.CreatedAt = s.now().UTC()
	return a
}

// UserMessage returns a message suitable for the person who requested the
// analysis.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidLead):
		return "Please fill in all required fields."
	case errors.Is(err, ErrBusinessNotFound):
		return "We could not find your business on Google Maps. Check that the business name " +
			"is spelled exactly as listed and that the city is correct, then try again."
	default:
		return "We encountered an error connecting to Google Places. Please try again shortly."
	}
}

func trimLead(l model.Lead) model.Lead {
	l.FirstName = strings.TrimSpace(l.FirstName)
	l.Email = strings.TrimSpace(l.Email)
	l.Phone = strings.TrimSpace(l.Phone)
	l.BusinessName = strings.TrimSpace(l.BusinessName)
	l.City = strings.TrimSpace(l.City)
	return l
}

func reportFormats(a *model.Analysis) []string {
	var out []string
	for _, f := range report.Formats() {
		if a.HasReport(f) {
			out = append(out, f)
		}
	}
	return out
}
