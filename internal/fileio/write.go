package fileio

import (
	"encoding/csv"
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"
)

// Sheet: лист для выгрузки: заголовки + строки значений.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// WriteCSV пишет один лист как CSV (UTF-8 с BOM, чтобы Excel не путал кодировку).
func WriteCSV(w io.Writer, s Sheet) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Headers); err != nil {
		return err
	}
	rec := make([]string, len(s.Headers))
	for _, row := range s.Rows {
		for i := range rec {
			rec[i] = ""
			if i < len(row) && row[i] != nil {
				rec[i] = formatCell(row[i])
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX пишет листы в одну книгу; первый лист заменяет дефолтный Sheet1.
func WriteXLSX(w io.Writer, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return err
		}

		header := make([]any, len(s.Headers))
		for c, h := range s.Headers {
			header[c] = h
		}
		if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
			return err
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			vals := row
			if err := f.SetSheetRow(s.Name, cell, &vals); err != nil {
				return err
			}
		}
		if len(s.Headers) > 0 {
			last, _ := excelize.ColumnNumberToName(len(s.Headers))
			_ = f.SetColWidth(s.Name, "A", last, 24)
		}
	}
	if len(sheets) > 0 {
		f.SetActiveSheet(0)
	}
	return f.Write(w)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.2f", x)
	default:
		return fmt.Sprint(x)
	}
}
