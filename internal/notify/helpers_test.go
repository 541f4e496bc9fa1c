package notify

import (
	"context"
	"sync/atomic"

	"github.com/sells-group/visibility-cli/internal/model"
)

// blockingSink blocks every delivery until release is closed.
type blockingSink struct {
	release chan struct{}
	started atomic.Bool
	calls   atomic.Int32
}

func (b *blockingSink) Name() string { return "blocking" }

func (b *blockingSink) Notify(_ context.Context, _ model.NotificationPayload) error {
	b.started.Store(true)
	<-b.release
	b.calls.Add(1)
	return nil
}
