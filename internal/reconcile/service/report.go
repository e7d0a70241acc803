package service

import (
	"fmt"
	"io"
	"strings"

	"facility-recon/internal/fileio"
	"facility-recon/internal/reconcile/model"
)

var reportColumns = []string{
	"master_name",
	"master_unique_name",
	"source_row",
	"reference_name",
	"reference_unique_name",
	"similarity_score",
	"status",
	"match_status",
	"reconciled_name",
}

// ResultSheet строит таблицу результатов для выгрузки. Сначала служебные колонки,
// затем сквозные колонки мастер-файла.
func ResultSheet(res model.Result) fileio.Sheet {
	headers := append([]string(nil), reportColumns...)
	taken := make(map[string]struct{}, len(headers)+len(res.MasterColumns))
	for _, h := range headers {
		taken[h] = struct{}{}
	}
	for _, c := range res.MasterColumns {
		h := passthroughHeader(c, taken)
		taken[h] = struct{}{}
		headers = append(headers, h)
	}

	rows := make([][]any, 0, len(res.Rows))
	for _, r := range res.Rows {
		row := []any{
			r.MasterName,
			r.MasterUniqueName,
			r.SourceRow,
			deref(r.BestReferenceName),
			deref(r.BestReference),
			r.Score,
			string(r.Status),
			string(r.Tier),
			r.ReconciledName,
		}
		for _, c := range res.MasterColumns {
			row = append(row, r.Fields[c])
		}
		rows = append(rows, row)
	}
	return fileio.Sheet{Name: "Results", Headers: headers, Rows: rows}
}

// совпадающие со служебными колонки мастер-файла получают префикс "master.",
// при повторном конфликте ещё и номер
func passthroughHeader(c string, taken map[string]struct{}) string {
	if _, ok := taken[c]; !ok {
		return c
	}
	h := "master." + c
	for n := 2; ; n++ {
		if _, ok := taken[h]; !ok {
			return h
		}
		h = fmt.Sprintf("master.%s (%d)", c, n)
	}
}

// SummarySheet: label → count.
func SummarySheet(s model.Summary) fileio.Sheet {
	rows := make([][]any, 0, 6)
	for _, r := range s.Table() {
		rows = append(rows, []any{r.Label, r.Count})
	}
	rows = append(rows, []any{"Threshold", s.Threshold})
	return fileio.Sheet{Name: "Summary", Headers: []string{"label", "count"}, Rows: rows}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// WriteReport пишет выгрузку. В csv только результаты, в xlsx ещё и лист Summary.
func WriteReport(w io.Writer, format string, res model.Result) error {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "csv":
		return fileio.WriteCSV(w, ResultSheet(res))
	case "xlsx":
		return fileio.WriteXLSX(w, ResultSheet(res), SummarySheet(res.Summary))
	default:
		return fmt.Errorf("%w: report format %q", fileio.ErrUnsupported, format)
	}
}
