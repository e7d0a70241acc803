package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrUnsupported = errors.New("unsupported file type")

// Table — таблица с заголовками в исходном порядке.
// Rows выровнены по Headers; Lines — номер строки в файле (1-based).
type Table struct {
	Headers []string
	Rows    [][]string
	Lines   []int
}

func (t Table) Len() int { return len(t.Rows) }

// Records — строки как map[header]value (для сквозных колонок).
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for c, h := range t.Headers {
			if c < len(row) {
				m[h] = row[c]
			}
		}
		out = append(out, m)
	}
	return out
}

// ReadTable — выберет парсер по расширению.
// headerRow — номер строки заголовков (1-based).
func ReadTable(r io.Reader, filename string, headerRow int) (Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow, 0)
	case ".tsv", ".tab":
		return readCSV(r, headerRow, '\t')
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnsupported, filename)
	}
}

// pickHeader — берёт строку заголовков, подставляет Column N для пустых
// и разводит повторяющиеся имена суффиксом " (2)", " (3)"...
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	used := make(map[string]struct{}, len(h))
	for i, v := range h {
		v = strings.TrimSpace(strings.TrimPrefix(v, "\uFEFF"))
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		name := v
		for n := 2; ; n++ {
			if _, dup := used[name]; !dup {
				break
			}
			name = fmt.Sprintf("%s (%d)", v, n)
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

// rowsToTable — AoA → Table по заголовкам, пропуская полностью пустые строки.
func rowsToTable(rows [][]string, headers []string, headerRow int) Table {
	t := Table{Headers: headers}
	start := headerRow // первая строка после заголовков
	if start < 1 {
		start = 1
	}
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		row := make([]string, len(headers))
		empty := true
		for c := range headers {
			if c < len(rec) {
				row[c] = rec[c]
			}
			if strings.TrimSpace(row[c]) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, r+1)
	}
	return t
}

// normalizeCell — NBSP/узкие пробелы → пробел, обрезка краёв.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\u2009", " ").Replace(s)
	return strings.TrimSpace(s)
}
