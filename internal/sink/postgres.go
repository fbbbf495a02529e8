package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/rescue-router/internal/db"
	"github.com/sells-group/rescue-router/internal/model"
)

var postgresColumns = []string{"artifact", "category", "name", "address", "location", "distance_m", "type_code", "created_at"}

// Postgres bulk-copies tables into a Postgres table.
type Postgres struct {
	pool  db.Pool
	table string
}

// NewPostgres wraps an open pool.
func NewPostgres(pool db.Pool, table string) *Postgres {
	if table == "" {
		table = DefaultTable
	}
	return &Postgres{pool: pool, table: table}
}

// Migrate creates the records table.
func (p *Postgres) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	artifact   TEXT NOT NULL,
	category   TEXT NOT NULL,
	name       TEXT NOT NULL,
	address    TEXT,
	location   TEXT,
	distance_m DOUBLE PRECISION,
	type_code  TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, db.Sanitize(p.table))
	_, err := p.pool.Exec(ctx, ddl)
	return eris.Wrap(err, "sink: postgres migrate")
}

// Write implements Sink.
func (p *Postgres) Write(ctx context.Context, name string, records []model.POIRecord) error {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(records))
	for _, r := range toRows(records) {
		var dist any
		if r.DistanceM != nil {
			dist = *r.DistanceM
		}
		rows = append(rows, []any{name, r.Category, r.Name, r.Address, r.Location, dist, r.TypeCode, now})
	}
	_, err := db.CopyFrom(ctx, p.pool, p.table, postgresColumns, rows)
	return eris.Wrap(err, "sink: postgres")
}

// Close implements Sink.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
