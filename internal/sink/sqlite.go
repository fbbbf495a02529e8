package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/rescue-router/internal/model"
)

// SQLite appends tables to a SQLite database, one row per record tagged
// with the table name.
type SQLite struct {
	db    *sql.DB
	table string
}

// NewSQLite opens a SQLite database at dsn and configures WAL mode.
func NewSQLite(dsn, table string) (*SQLite, error) {
	if dsn == "" {
		return nil, eris.New("sink: sqlite: empty dsn")
	}
	if table == "" {
		table = DefaultTable
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sink: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sink: sqlite exec %s", pragma)
		}
	}
	return &SQLite{db: db, table: table}, nil
}

// Migrate creates the records table.
func (s *SQLite) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]q (
	artifact   TEXT NOT NULL,
	category   TEXT NOT NULL,
	name       TEXT NOT NULL,
	address    TEXT,
	location   TEXT,
	distance_m REAL,
	type_code  TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS %[2]q ON %[1]q(artifact);
`, s.table, "idx_"+s.table+"_artifact")
	_, err := s.db.ExecContext(ctx, ddl)
	return eris.Wrap(err, "sink: sqlite migrate")
}

// Write implements Sink.
func (s *SQLite) Write(ctx context.Context, name string, records []model.POIRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sink: sqlite begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %q (artifact, category, name, address, location, distance_m, type_code, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.table,
	))
	if err != nil {
		return eris.Wrap(err, "sink: sqlite prepare")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range toRows(records) {
		var dist any
		if r.DistanceM != nil {
			dist = *r.DistanceM
		}
		if _, err := stmt.ExecContext(ctx, name, r.Category, r.Name, r.Address, r.Location, dist, r.TypeCode, now); err != nil {
			return eris.Wrapf(err, "sink: sqlite insert %s", r.Name)
		}
	}
	return eris.Wrap(tx.Commit(), "sink: sqlite commit")
}

// Count reports how many rows a table name holds.
func (s *SQLite) Count(ctx context.Context, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q WHERE artifact = ?`, s.table), name).Scan(&n)
	return n, eris.Wrap(err, "sink: sqlite count")
}

// Close implements Sink.
func (s *SQLite) Close() error {
	return s.db.Close()
}
