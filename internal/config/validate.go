package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Command modes accepted by Validate.
const (
	ModeServe   = "serve"
	ModeAnalyze = "analyze"
	ModeScore   = "score"
	ModeStore   = "store"
)

var storeDrivers = []string{"memory", "sqlite", "postgres", "redis"}

// Validate checks the settings a command mode needs before any client is
// built. It reports every problem at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case ModeServe, ModeAnalyze:
		errs = append(errs, c.validateGoogle()...)
		errs = append(errs, c.validateStore()...)
		if c.Notify.Workers <= 0 {
			errs = append(errs, "notify.workers must be > 0")
		}
		if c.Notify.QueueSize <= 0 {
			errs = append(errs, "notify.queue_size must be > 0")
		}
		if c.Notify.Email.To != "" && c.Notify.Email.From == "" {
			errs = append(errs, "notify.email.from is required when notify.email.to is set")
		}
		if mode == ModeServe && (c.Server.Port <= 0 || c.Server.Port > 65535) {
			errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
		}
	case ModeStore:
		errs = append(errs, c.validateStore()...)
	case ModeScore:
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateGoogle() []string {
	var errs []string
	if c.Google.Key == "" {
		errs = append(errs, "google.key is required")
	}
	if c.Google.CompetitorLimit <= 0 {
		errs = append(errs, "google.competitor_limit must be > 0")
	}
	if c.Google.Concurrency <= 0 {
		errs = append(errs, "google.concurrency must be > 0")
	}
	return errs
}

func (c *Config) validateStore() []string {
	var errs []string
	if !slices.Contains(storeDrivers, c.Store.Driver) {
		errs = append(errs, fmt.Sprintf("store.driver %q must be one of %s",
			c.Store.Driver, strings.Join(storeDrivers, ", ")))
	}
	if (c.Store.Driver == "postgres" || c.Store.Driver == "sqlite") && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required for "+c.Store.Driver)
	}
	if c.Store.Driver == "redis" && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required for redis")
	}
	if c.Store.TTLHours < 0 {
		errs = append(errs, "store.ttl_hours must be >= 0")
	}
	return errs
}

// StoreTTL returns the result retention period. Zero keeps results until
// they are evicted.
func (c *Config) StoreTTL() time.Duration {
	return time.Duration(c.Store.TTLHours) * time.Hour
}

// NotifyTimeout returns the per-delivery notification timeout.
func (c *Config) NotifyTimeout() time.Duration {
	if c.Notify.TimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Notify.TimeoutSecs) * time.Second
}
