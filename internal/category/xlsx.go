package category

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Header aliases accepted in XLSX sheets. The Chinese headers match the
// provider's published classification and division workbooks.
var (
	bigClassHeaders = []string{"大类", "big_class"}
	midClassHeaders = []string{"中类", "mid_class"}
	subClassHeaders = []string{"小类", "sub_class"}
	codeHeaders     = []string{"NEW_TYPE", "code"}
	cityNameHeaders = []string{"中文名", "name"}
	adCodeHeaders   = []string{"adcode"}
	cityCodeHeaders = []string{"citycode"}
)

func readSheet(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "category: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("category: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("category: %s is empty", path)
	}
	return rows, nil
}

// columnIndex finds the first header matching any alias, or -1.
func columnIndex(header []string, aliases []string) int {
	for i, h := range header {
		for _, a := range aliases {
			if strings.EqualFold(h, a) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func readEntriesXLSX(path string) ([]Entry, error) {
	rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}

	header := rows[0]
	subIdx := columnIndex(header, subClassHeaders)
	codeIdx := columnIndex(header, codeHeaders)
	if subIdx < 0 || codeIdx < 0 {
		return nil, eris.Errorf("category: %s is missing sub-class or code column", path)
	}
	bigIdx := columnIndex(header, bigClassHeaders)
	midIdx := columnIndex(header, midClassHeaders)

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		e := Entry{
			BigClass: cell(row, bigIdx),
			MidClass: cell(row, midIdx),
			SubClass: cell(row, subIdx),
			Code:     padCode(cell(row, codeIdx)),
		}
		if e.SubClass == "" || e.Code == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readCitiesXLSX(path string) ([]City, error) {
	rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}

	header := rows[0]
	nameIdx := columnIndex(header, cityNameHeaders)
	adIdx := columnIndex(header, adCodeHeaders)
	if nameIdx < 0 || adIdx < 0 {
		return nil, eris.Errorf("category: %s is missing name or adcode column", path)
	}
	cityIdx := columnIndex(header, cityCodeHeaders)

	cities := make([]City, 0, len(rows)-1)
	for _, row := range rows[1:] {
		c := City{
			Name:     cell(row, nameIdx),
			AdCode:   cell(row, adIdx),
			CityCode: cell(row, cityIdx),
		}
		if c.Name == "" || c.AdCode == "" {
			continue
		}
		cities = append(cities, c)
	}
	return cities, nil
}

// padCode restores leading zeros lost when a sheet stores type codes as numbers.
func padCode(code string) string {
	if code == "" || len(code) >= 6 {
		return code
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	return strings.Repeat("0", 6-len(code)) + code
}
