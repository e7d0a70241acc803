package service

import (
	"fmt"
	"regexp"
	"strings"

	"facility-recon/internal/fileio"
	"facility-recon/internal/reconcile/model"
)

// подстроки заголовка, по которым узнаём колонку с наименованием
var nameHints = []string{"hf", "facility", "name"}

// короче не ищем по вхождению, иначе "id" цепляется за что угодно
const minContainsKey = 3

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, без служебных символов
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, " ")
	return collapseSpaces(s)
}

// resolveColumn ищет колонку по желаемому имени.
// Поддерживает варианты через "|" (например: "HF Name|Facility").
// Возвращает -1, если ничего не подошло.
func resolveColumn(headers []string, want string) int {
	want = strings.TrimSpace(want)
	if want == "" {
		return -1
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// 1) точное совпадение (как есть)
	for _, a := range alts {
		for i, h := range headers {
			if h == a {
				return i
			}
		}
	}

	// 2) по нормализованному ключу
	norms := make([]string, 0, len(alts))
	for _, a := range alts {
		if n := normHeaderKey(a); n != "" {
			norms = append(norms, n)
		}
	}
	for i, h := range headers {
		nk := normHeaderKey(h)
		for _, n := range norms {
			if nk == n {
				return i
			}
		}
	}

	// 3) заголовок содержит запрошенное имя целыми словами:
	// "hf name (dhis2)" подходит под "hf name", но не наоборот
	best, bestScore := -1, 0
	for i, h := range headers {
		nk := " " + normHeaderKey(h) + " "
		for _, n := range norms {
			if len([]rune(n)) < minContainsKey {
				continue
			}
			if strings.Contains(nk, " "+n+" ") && len(n) > bestScore {
				best, bestScore = i, len(n)
			}
		}
	}
	return best
}

// DetectNameColumn: первая колонка, в заголовке которой есть hf/facility/name
// (без учёта регистра); иначе первая колонка.
func DetectNameColumn(headers []string) int {
	if len(headers) == 0 {
		return -1
	}
	for i, h := range headers {
		lh := strings.ToLower(h)
		for _, hint := range nameHints {
			if strings.Contains(lh, hint) {
				return i
			}
		}
	}
	return 0
}

// повторная шапка посреди выгрузки: все непустые ячейки совпадают с заголовками,
// и таких ячеек хотя бы две
func looksLikeHeaderRow(row, headers []string) bool {
	cnt := 0
	for i, h := range headers {
		if i >= len(row) || row[i] == "" {
			continue
		}
		if !strings.EqualFold(row[i], h) {
			return false
		}
		cnt++
	}
	return cnt >= 2
}

// NewNameList строит список имён из таблицы и сразу снимает дубли.
// source это "master" или "reference", column задаёт колонку явно (может быть пустой).
func NewNameList(t fileio.Table, source, column string) (model.NameList, error) {
	if len(t.Headers) == 0 {
		if len(t.Rows) == 0 {
			return model.NameList{Source: source}, nil
		}
		return model.NameList{}, model.NewInputFormatError(source, "no columns found", nil)
	}

	idx := -1
	if strings.TrimSpace(column) != "" {
		idx = resolveColumn(t.Headers, column)
		if idx < 0 {
			return model.NameList{}, model.NewInputFormatError(source,
				fmt.Sprintf("column %q not found (have: %s)", column, strings.Join(t.Headers, ", ")), nil)
		}
	} else {
		idx = DetectNameColumn(t.Headers)
	}

	list := model.NameList{
		Source:  source,
		Column:  t.Headers[idx],
		Columns: append([]string(nil), t.Headers...),
		Records: make([]model.NameRecord, 0, len(t.Rows)),
	}
	fields := t.Records()
	usable := 0
	for i, row := range t.Rows {
		if looksLikeHeaderRow(row, t.Headers) {
			continue
		}
		name := ""
		if idx < len(row) {
			name = strings.TrimSpace(row[idx])
		}
		if name != "" {
			usable++
		}
		line := i + 1
		if i < len(t.Lines) {
			line = t.Lines[i]
		}
		list.Records = append(list.Records, model.NameRecord{
			RawName:   name,
			SourceRow: line,
			Fields:    fields[i],
		})
	}
	if len(list.Records) > 0 && usable == 0 {
		return model.NameList{}, model.NewInputFormatError(source,
			fmt.Sprintf("name column %q has no usable values", list.Column), nil)
	}
	return Deduplicate(list)
}
