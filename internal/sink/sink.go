// Package sink persists aggregated POI tables for downstream inspection.
package sink

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/rescue-router/internal/config"
	"github.com/sells-group/rescue-router/internal/db"
	"github.com/sells-group/rescue-router/internal/model"
)

// Driver names.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// DefaultTable is the relational table used when none is configured.
const DefaultTable = "poi_records"

// Sink writes one named table of records.
type Sink interface {
	Write(ctx context.Context, name string, records []model.POIRecord) error
	Close() error
}

// New builds the sink selected by cfg.Driver.
func New(ctx context.Context, cfg config.SinkConfig) (Sink, error) {
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	switch cfg.Driver {
	case "", DriverCSV:
		return NewCSV(cfg.Dir), nil
	case DriverSQLite:
		s, err := NewSQLite(cfg.DSN, table)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DSN, nil)
		if err != nil {
			return nil, eris.Wrap(err, "sink: postgres")
		}
		s := NewPostgres(pool, table)
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case DriverNone:
		return Noop{}, nil
	default:
		return nil, eris.Errorf("sink: unknown driver %q", cfg.Driver)
	}
}

// Noop discards everything.
type Noop struct{}

// Write implements Sink.
func (Noop) Write(context.Context, string, []model.POIRecord) error { return nil }

// Close implements Sink.
func (Noop) Close() error { return nil }

// row is the flattened record written by every driver. Field order is the
// CSV column order: category first, the rest alphabetical.
type row struct {
	Category  string   `csv:"category"`
	Address   string   `csv:"address"`
	DistanceM *float64 `csv:"distance_m,omitempty"`
	Location  string   `csv:"location"`
	Name      string   `csv:"name"`
	TypeCode  string   `csv:"type_code"`
}

func toRows(records []model.POIRecord) []row {
	rows := make([]row, len(records))
	for i, r := range records {
		rows[i] = row{
			Category:  r.Category,
			Address:   r.Address,
			DistanceM: r.DistanceMeters,
			Name:      r.Name,
			TypeCode:  r.TypeCode,
		}
		if r.Location != nil {
			rows[i].Location = r.Location.String()
		}
	}
	return rows
}
