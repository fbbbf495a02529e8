package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/rescue-router/internal/model"
)

// CSV writes each table to <dir>/<name>.csv, replacing any previous file.
type CSV struct {
	dir string
}

// NewCSV creates a CSV sink rooted at dir ("." when empty).
func NewCSV(dir string) *CSV {
	if dir == "" {
		dir = "."
	}
	return &CSV{dir: dir}
}

// Path returns the file a table name is written to.
func (c *CSV) Path(name string) string {
	return filepath.Join(c.dir, fileName(name)+".csv")
}

// Write implements Sink.
func (c *CSV) Write(ctx context.Context, name string, records []model.POIRecord) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "sink: csv")
	}

	data, err := csvutil.Marshal(toRows(records))
	if err != nil {
		return eris.Wrap(err, "sink: csv marshal")
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return eris.Wrapf(err, "sink: csv mkdir %s", c.dir)
	}

	path := c.Path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "sink: csv write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return eris.Wrapf(err, "sink: csv rename %s", path)
	}
	return nil
}

// Close implements Sink.
func (c *CSV) Close() error { return nil }

// fileName drops path separators so a table name cannot escape the directory.
func fileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "table"
	}
	return name
}
