package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/visibility-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Times are stored
// as Unix nanoseconds; an expires_at of 0 never expires.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	token      TEXT PRIMARY KEY,
	business   TEXT NOT NULL DEFAULT '',
	data       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_analyses_expires_at ON analyses(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, a *model.Analysis, ttl time.Duration) error {
	if err := stamp(a, ttl, s.now()); err != nil {
		return err
	}
	data, err := encode(a)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (token, business, data, created_at, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(token) DO UPDATE SET
			business = excluded.business,
			data = excluded.data,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		a.Token, a.Business.Name, string(data), a.CreatedAt.UnixNano(), unixNanoOrZero(a.ExpiresAt),
	)
	return eris.Wrapf(err, "sqlite: save analysis %s", a.Token)
}

func (s *SQLiteStore) Get(ctx context.Context, token string) (*model.Analysis, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM analyses WHERE token = ? AND (expires_at = 0 OR expires_at > ?)`,
		token, s.now().UnixNano(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", token)
	}
	return decode([]byte(data))
}

func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE token = ?`, token)
	return eris.Wrapf(err, "sqlite: delete analysis %s", token)
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM analyses WHERE expires_at != 0 AND expires_at <= ?`,
		s.now().UnixNano(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired analyses")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func unixNanoOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
