package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	xls "github.com/extrame/xls"
)

// старые выгрузки бывают в utf-8, cp1252 (латиница с диакритикой) и cp1251
var xlsCharsets = []string{"utf-8", "windows-1252", "windows-1251"}

// сколько колонок просматриваем: Row.LastCol() у extrame/xls врёт на объединённых ячейках
const xlsProbeCols = 512

func openXLS(b []byte) (*xls.WorkBook, error) {
	var errs []error
	for _, cs := range xlsCharsets {
		wb, err := xls.OpenReader(bytes.NewReader(b), cs)
		if err == nil && wb != nil {
			return wb, nil
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cs, err))
		}
	}
	if len(errs) == 0 {
		return nil, errors.New("xls: failed to open workbook")
	}
	return nil, fmt.Errorf("xls: %w", errors.Join(errs...))
}

// readXLS читает первый лист. Ширина таблицы: самая правая непустая ячейка по всему листу.
func readXLS(r io.Reader, headerRow int) (Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Table{}, err
	}
	wb, err := openXLS(b)
	if err != nil {
		return Table{}, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Table{}, nil
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		var cells []string
		if row := sheet.Row(i); row != nil {
			cells = make([]string, xlsProbeCols)
			for j := range cells {
				if v := normalizeCell(row.Col(j)); v != "" {
					cells[j] = v
					width = max(width, j+1)
				}
			}
		}
		rows = append(rows, cells)
	}
	if width == 0 {
		return Table{}, nil
	}
	for i := range rows {
		if rows[i] == nil {
			rows[i] = make([]string, width)
			continue
		}
		rows[i] = rows[i][:width]
	}

	h := pickHeader(rows, headerRow)
	return rowsToTable(rows, h, headerRow), nil
}
