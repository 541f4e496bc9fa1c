// Package notify delivers lead summaries to external sinks.
package notify

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/monitoring"
)

// Notifier delivers one lead summary.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, p model.NotificationPayload) error
}

// Multi fans a payload out to every sink concurrently.
type Multi struct {
	sinks []Notifier
}

// NewMulti creates a Multi over the non-nil sinks.
func NewMulti(sinks ...Notifier) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Name implements Notifier.
func (m *Multi) Name() string { return "multi" }

// Len returns the number of sinks.
func (m *Multi) Len() int { return len(m.sinks) }

// Names returns the sink names in registration order.
func (m *Multi) Names() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return names
}

// Notify delivers p to every sink. A failing sink does not stop the others;
// all failures are joined into the returned error.
func (m *Multi) Notify(ctx context.Context, p model.NotificationPayload) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		g.Go(func() error {
			err := s.Notify(gctx, p)
			monitoring.RecordNotification(s.Name(), err)
			if err != nil {
				zap.L().Warn("notify: sink failed",
					zap.String("sink", s.Name()),
					zap.String("business", p.BusinessName),
					zap.Error(err),
				)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
