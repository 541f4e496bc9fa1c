// Package store persists completed analyses under their access token with
// an expiry.
package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/config"
	"github.com/sells-group/visibility-cli/internal/model"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var (
	// ErrNotFound is returned for unknown and expired tokens.
	ErrNotFound = eris.New("store: analysis not found")
	// ErrNoToken is returned when saving an analysis without a token.
	ErrNoToken = eris.New("store: analysis has no token")
)

// Store defines the persistence interface for analyses. Implementations
// never return an expired analysis.
type Store interface {
	// Save stores a under a.Token, replacing any previous value. A ttl of
	// zero or less means the analysis never expires.
	Save(ctx context.Context, a *model.Analysis, ttl time.Duration) error
	Get(ctx context.Context, token string) (*model.Analysis, error)
	// Delete removes token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes expired analyses and returns how many were removed.
	DeleteExpired(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case "", DriverMemory:
		return NewMemory(cfg.Store.MaxEntries), nil
	case DriverSQLite:
		return NewSQLite(cfg.Store.DatabaseURL)
	case DriverPostgres:
		return NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case DriverRedis:
		return NewRedis(RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
}

// stamp sets the creation and expiry times of a for a save at now.
func stamp(a *model.Analysis, ttl time.Duration, now time.Time) error {
	if a == nil || a.Token == "" {
		return ErrNoToken
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now.UTC()
	}
	a.ExpiresAt = time.Time{}
	if ttl > 0 {
		a.ExpiresAt = now.UTC().Add(ttl)
	}
	return nil
}

func encode(a *model.Analysis) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, eris.Wrapf(err, "store: marshal analysis %s", a.Token)
	}
	return data, nil
}

func decode(data []byte) (*model.Analysis, error) {
	var a model.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal analysis")
	}
	return &a, nil
}
