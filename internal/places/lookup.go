// Package places looks up a business and its nearby same-industry
// competitors, and normalizes Places API results into business profiles.
package places

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/visibility-cli/internal/competitor"
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/monitoring"
	"github.com/sells-group/visibility-cli/internal/resilience"
	"github.com/sells-group/visibility-cli/pkg/google"
)

// ErrBusinessNotFound is returned when no search result matches the
// business name.
var ErrBusinessNotFound = eris.New("places: business not found")

// Defaults for Service.
const (
	DefaultRadiusM        = 8000
	DefaultCandidateLimit = 10
	DefaultConcurrency    = 4
)

// Result is a looked-up business with its filtered comparison set.
type Result struct {
	Business    model.BusinessProfile
	Competitors []model.BusinessProfile
	// Candidates is the number of same-industry competitors before filtering.
	Candidates int
}

// Option configures a Service.
type Option func(*Service)

// WithRadius sets the nearby search radius in meters.
func WithRadius(m int) Option {
	return func(s *Service) {
		if m > 0 {
			s.radiusM = m
		}
	}
}

// WithCandidateLimit sets how many same-industry candidates are collected
// before chain filtering.
func WithCandidateLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.candidateLimit = n
		}
	}
}

// WithCompetitorLimit sets the size of the final comparison set.
func WithCompetitorLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.competitorLimit = n
		}
	}
}

// WithConcurrency bounds concurrent detail fetches.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// Service resolves businesses through the Places API.
type Service struct {
	client          google.Client
	radiusM         int
	candidateLimit  int
	competitorLimit int
	concurrency     int
}

// New creates a Service backed by client.
func New(client google.Client, opts ...Option) *Service {
	s := &Service{
		client:          client,
		radiusM:         DefaultRadiusM,
		candidateLimit:  DefaultCandidateLimit,
		competitorLimit: competitor.DefaultWant,
		concurrency:     DefaultConcurrency,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Lookup finds the business, fetches its profile and returns it with a
// filtered set of nearby competitors.
func (s *Service) Lookup(ctx context.Context, name, city string) (*Result, error) {
	found, err := s.FindBusiness(ctx, name, city)
	if err != nil {
		return nil, err
	}

	business, err := s.Profile(ctx, found.PlaceID)
	if err != nil {
		return nil, err
	}

	candidates := s.Competitors(ctx, business)
	return &Result{
		Business:    business,
		Competitors: competitor.Filter(candidates, business.ReviewCount, s.competitorLimit),
		Candidates:  len(candidates),
	}, nil
}

// FindBusiness tries progressively broader text queries and returns the
// first top result whose name matches name.
func (s *Service) FindBusiness(ctx context.Context, name, city string) (*google.SearchResult, error) {
	log := zap.L().With(zap.String("business", name), zap.String("city", city))

	for _, q := range searchQueries(name, city) {
		resp, err := s.client.TextSearch(ctx, q)
		observe("text_search", err)
		if err != nil {
			return nil, eris.Wrapf(err, "places: search %q", q)
		}
		if len(resp.Results) == 0 {
			log.Debug("places: no results", zap.String("query", q))
			continue
		}

		top := resp.Results[0]
		if NamesMatch(name, top.Name) {
			log.Info("places: matched business", zap.String("query", q), zap.String("match", top.Name))
			return &top, nil
		}
		log.Info("places: rejected result, name mismatch", zap.String("query", q), zap.String("result", top.Name))
	}

	return nil, ErrBusinessNotFound
}

// Profile fetches and normalizes a place.
func (s *Service) Profile(ctx context.Context, placeID string) (model.BusinessProfile, error) {
	d, err := s.client.Details(ctx, placeID)
	observe("details", err)
	if err != nil {
		return model.BusinessProfile{}, eris.Wrapf(err, "places: details %s", placeID)
	}
	return Normalize(placeID, d), nil
}

// Competitors returns up to the candidate limit of nearby same-industry
// businesses in upstream proximity order. A subject without a location or
// with only generic types has no competitors. Upstream failures degrade to
// fewer or no competitors and are logged.
func (s *Service) Competitors(ctx context.Context, subject model.BusinessProfile) []model.BusinessProfile {
	log := zap.L().With(zap.String("place_id", subject.PlaceID))

	if subject.Location.IsZero() {
		return nil
	}
	if IsGenericType(subject.PrimaryType) {
		log.Warn("places: generic primary type, skipping competitor search", zap.String("type", subject.PrimaryType))
		return nil
	}

	resp, err := s.client.NearbySearch(ctx, google.NearbyRequest{
		Location: google.LatLng{Lat: subject.Location.Lat, Lng: subject.Location.Lng},
		RadiusM:  s.radiusM,
		Type:     subject.PrimaryType,
	})
	observe("nearby_search", err)
	if err != nil {
		log.Warn("places: nearby search failed", zap.Error(err))
		return nil
	}

	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.PlaceID != "" && r.PlaceID != subject.PlaceID {
			ids = append(ids, r.PlaceID)
		}
	}

	fetched := make([]*model.BusinessProfile, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.Profile(gctx, id)
			if err != nil {
				log.Warn("places: skipping competitor", zap.String("competitor", id), zap.Error(err))
				return nil
			}
			fetched[i] = &p
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.BusinessProfile, 0, s.candidateLimit)
	for _, p := range fetched {
		if p == nil {
			continue
		}
		if !SameIndustry(subject.Types, p.Types) {
			log.Debug("places: skipping competitor, different industry",
				zap.String("competitor", p.Name), zap.Strings("types", p.Types))
			continue
		}
		out = append(out, *p)
		if len(out) >= s.candidateLimit {
			break
		}
	}
	return out
}

func observe(operation string, err error) {
	monitoring.PlacesRequests.WithLabelValues(operation, resilience.Classify(err)).Inc()
}
