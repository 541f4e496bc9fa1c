package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/monitoring"
)

// DispatcherConfig sizes a Dispatcher.
type DispatcherConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// Dispatcher delivers payloads in the background with a bounded queue.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	queue    chan model.NotificationPayload

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts the workers. Zero config values default to a queue
// of 64, 2 workers and a 10 second delivery timeout.
func NewDispatcher(n Notifier, cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	d := &Dispatcher{
		notifier: n,
		timeout:  cfg.Timeout,
		queue:    make(chan model.NotificationPayload, cfg.QueueSize),
	}
	for range cfg.Workers {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Dispatch enqueues p without blocking. It reports false when the payload
// was dropped because the queue is full or the dispatcher is closed.
func (d *Dispatcher) Dispatch(p model.NotificationPayload) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(p, "closed")
		return false
	}
	select {
	case d.queue <- p:
		return true
	default:
		d.drop(p, "queue full")
		return false
	}
}

// Close stops accepting payloads, delivers what is queued and waits for the
// workers. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for p := range d.queue {
		d.deliver(p)
	}
}

func (d *Dispatcher) deliver(p model.NotificationPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, p); err != nil {
		zap.L().Error("notify: delivery failed",
			zap.String("business", p.BusinessName),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) drop(p model.NotificationPayload, reason string) {
	monitoring.NotificationsDropped.Inc()
	zap.L().Warn("notify: notification dropped",
		zap.String("business", p.BusinessName),
		zap.String("reason", reason),
	)
}
