// Package category holds the immutable lookup tables that map category names
// to provider type codes and city names to region codes.
package category

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTables []byte

// ErrNotFound is returned when a category or city name is absent from the table.
var ErrNotFound = eris.New("category: not found")

// Entry is one row of the category table.
type Entry struct {
	BigClass string `yaml:"big_class"`
	MidClass string `yaml:"mid_class"`
	SubClass string `yaml:"sub_class"`
	Code     string `yaml:"code"`
}

// City is one row of the region table.
type City struct {
	Name     string `yaml:"name"`
	AdCode   string `yaml:"adcode"`
	CityCode string `yaml:"citycode"`
}

// Group names a set of categories by class. An empty field matches any value.
type Group struct {
	Name     string `yaml:"name" mapstructure:"name"`
	BigClass string `yaml:"big_class" mapstructure:"big_class"`
	MidClass string `yaml:"mid_class" mapstructure:"mid_class"`
}

// Table is safe for concurrent reads; it is never modified after construction.
type Table struct {
	entries []Entry
	byName  map[string]Entry
	cities  []City
}

type tableFile struct {
	Categories []Entry `yaml:"categories"`
	Cities     []City  `yaml:"cities"`
}

// New builds a Table from category and city rows. On duplicate sub-class
// names the first row wins.
func New(entries []Entry, cities []City) *Table {
	t := &Table{
		byName: make(map[string]Entry, len(entries)),
		cities: append([]City(nil), cities...),
	}
	for _, e := range entries {
		e.SubClass = strings.TrimSpace(e.SubClass)
		if e.SubClass == "" {
			continue
		}
		if _, dup := t.byName[e.SubClass]; dup {
			continue
		}
		t.byName[e.SubClass] = e
		t.entries = append(t.entries, e)
	}
	return t
}

// Default returns the embedded built-in tables.
func Default() (*Table, error) {
	entries, cities, err := parseYAML(defaultTables)
	if err != nil {
		return nil, err
	}
	return New(entries, cities), nil
}

// Load reads the category and city tables. Each path may point at a YAML or
// XLSX file; an empty path falls back to the embedded table of that kind.
func Load(categoriesPath, citiesPath string) (*Table, error) {
	defEntries, defCities, err := parseYAML(defaultTables)
	if err != nil {
		return nil, err
	}

	entries := defEntries
	if categoriesPath != "" {
		if entries, err = loadEntries(categoriesPath); err != nil {
			return nil, err
		}
	}

	cities := defCities
	if citiesPath != "" {
		if cities, err = loadCities(citiesPath); err != nil {
			return nil, err
		}
	}

	return New(entries, cities), nil
}

func loadEntries(path string) ([]Entry, error) {
	if isXLSX(path) {
		return readEntriesXLSX(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "category: read %s", path)
	}
	entries, _, err := parseYAML(data)
	return entries, err
}

func loadCities(path string) ([]City, error) {
	if isXLSX(path) {
		return readCitiesXLSX(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "category: read %s", path)
	}
	_, cities, err := parseYAML(data)
	return cities, err
}

func parseYAML(data []byte) ([]Entry, []City, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, eris.Wrap(err, "category: parse tables")
	}
	return f.Categories, f.Cities, nil
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// Code returns the provider type code for a category (sub-class) name.
func (t *Table) Code(name string) (string, error) {
	e, ok := t.byName[strings.TrimSpace(name)]
	if !ok {
		return "", eris.Wrapf(ErrNotFound, "category %q", name)
	}
	return e.Code, nil
}

// Select returns the sub-class names matching the group, in table order.
func (t *Table) Select(g Group) []string {
	var names []string
	for _, e := range t.entries {
		if g.BigClass != "" && e.BigClass != g.BigClass {
			continue
		}
		if g.MidClass != "" && e.MidClass != g.MidClass {
			continue
		}
		names = append(names, e.SubClass)
	}
	return names
}

// RegionCode returns the administrative code of the first city whose name
// contains the given name.
func (t *Table) RegionCode(city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", eris.Wrap(ErrNotFound, "empty city name")
	}
	for _, c := range t.cities {
		if strings.Contains(c.Name, city) {
			return c.AdCode, nil
		}
	}
	return "", eris.Wrapf(ErrNotFound, "city %q", city)
}

// Len reports the number of category rows.
func (t *Table) Len() int { return len(t.entries) }
