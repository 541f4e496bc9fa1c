package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/db"
	"github.com/sells-group/visibility-cli/internal/model"
)

// PostgresStore implements Store using a pgx pool. Analyses are stored as
// JSONB; a NULL expires_at never expires.
type PostgresStore struct {
	pool db.Pool
	now  func() time.Time
}

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"get_analysis":    `SELECT data FROM analyses WHERE token = $1 AND (expires_at IS NULL OR expires_at > $2)`,
	"delete_analysis": `DELETE FROM analyses WHERE token = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	cfg := db.PoolConfig{Prepared: preparedStatements}
	if poolCfg != nil {
		cfg.MaxConns = poolCfg.MaxConns
		cfg.MinConns = poolCfg.MinConns
	}

	pool, err := db.Connect(ctx, connString, &cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	token      TEXT PRIMARY KEY,
	business   TEXT NOT NULL DEFAULT '',
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_analyses_expires_at ON analyses(expires_at) WHERE expires_at IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_analyses_business ON analyses(business);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, a *model.Analysis, ttl time.Duration) error {
	if err := stamp(a, ttl, s.now()); err != nil {
		return err
	}
	data, err := encode(a)
	if err != nil {
		return err
	}

	var expiresAt *time.Time
	if !a.ExpiresAt.IsZero() {
		expiresAt = &a.ExpiresAt
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (token, business, data, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (token) DO UPDATE SET
			business = EXCLUDED.business,
			data = EXCLUDED.data,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`,
		a.Token, a.Business.Name, data, a.CreatedAt, expiresAt,
	)
	return eris.Wrapf(err, "postgres: save analysis %s", a.Token)
}

func (s *PostgresStore) Get(ctx context.Context, token string) (*model.Analysis, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM analyses WHERE token = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		token, s.now().UTC(),
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis %s", token)
	}
	return decode(data)
}

func (s *PostgresStore) Delete(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM analyses WHERE token = $1`, token)
	return eris.Wrapf(err, "postgres: delete analysis %s", token)
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM analyses WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		s.now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired analyses")
	}
	return int(tag.RowsAffected()), nil
}
