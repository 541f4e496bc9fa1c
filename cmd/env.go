package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/analysis"
	"github.com/sells-group/visibility-cli/internal/notify"
	"github.com/sells-group/visibility-cli/internal/places"
	"github.com/sells-group/visibility-cli/internal/resilience"
	"github.com/sells-group/visibility-cli/internal/store"
	"github.com/sells-group/visibility-cli/pkg/google"
)

// analysisEnv holds the store, notification dispatcher and analysis service
// shared by the serve and analyze commands.
type analysisEnv struct {
	Store      store.Store
	Dispatcher *notify.Dispatcher // nil when no sink is configured
	Service    *analysis.Service
}

// Close drains pending notifications and closes the store.
func (e *analysisEnv) Close() {
	if e.Dispatcher != nil {
		e.Dispatcher.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens and migrates the configured result store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	zap.L().Debug("store ready", zap.String("driver", cfg.Store.Driver))
	return st, nil
}

// initGoogle builds the Places client with the configured rate limit,
// retry policy and circuit breaker.
func initGoogle() google.Client {
	guard := resilience.NewGuard("google",
		resilience.FromRetryConfig(cfg.Retry),
		resilience.FromCircuitConfig(cfg.Circuit),
	)
	opts := []google.Option{
		google.WithRateLimit(cfg.Google.RateLimit),
		google.WithGuard(guard),
	}
	if cfg.Google.BaseURL != "" {
		opts = append(opts, google.WithBaseURL(cfg.Google.BaseURL))
	}
	if cfg.Google.Language != "" {
		opts = append(opts, google.WithLanguage(cfg.Google.Language))
	}
	return google.NewClient(cfg.Google.Key, opts...)
}

// initNotify builds the notification dispatcher. It returns nil when no
// sink is configured.
func initNotify(ctx context.Context) (*notify.Dispatcher, error) {
	sinks, err := notify.FromConfig(ctx, cfg.Notify)
	if err != nil {
		return nil, err
	}
	if sinks.Len() == 0 {
		zap.L().Info("no notification sinks configured")
		return nil, nil
	}
	return notify.NewDispatcher(sinks, notify.DispatcherConfig{
		QueueSize: cfg.Notify.QueueSize,
		Workers:   cfg.Notify.Workers,
		Timeout:   cfg.NotifyTimeout(),
	}), nil
}

// initAnalysis validates cfg for mode and wires the analysis service.
// Callers should defer env.Close().
func initAnalysis(ctx context.Context, mode string) (*analysisEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	env := &analysisEnv{Store: st}

	d, err := initNotify(ctx)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Dispatcher = d

	looker := places.New(initGoogle(),
		places.WithRadius(cfg.Google.RadiusM),
		places.WithCandidateLimit(cfg.Google.CandidateLimit),
		places.WithCompetitorLimit(cfg.Google.CompetitorLimit),
		places.WithConcurrency(cfg.Google.Concurrency),
	)

	opts := []analysis.Option{
		analysis.WithTTL(cfg.StoreTTL()),
		analysis.WithCompetitorLimit(cfg.Google.CompetitorLimit),
	}
	if d != nil {
		env.Service = analysis.New(looker, st, d, opts...)
	} else {
		env.Service = analysis.New(looker, st, nil, opts...)
	}
	return env, nil
}
