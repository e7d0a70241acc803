package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

// readCSV reads CSV with headerRow (1-based), auto-detecting encoding and converting to UTF-8.
// A zero delimiter is sniffed from the first line (comma, semicolon or tab).
func readCSV(r io.Reader, headerRow int, delim rune) (Table, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	// Peek a bit to detect encoding and delimiter
	bom := []byte("\uFEFF")
	if head, _ := br.Peek(len(bom)); bytes.Equal(head, bom) {
		_, _ = br.Discard(len(bom))
	}
	peek, _ := br.Peek(sniffSize)

	var dec io.Reader = br
	if enc := detectEncoding(peek); enc != nil {
		dec = transform.NewReader(br, enc.NewDecoder())
	}
	if delim == 0 {
		delim = sniffDelimiter(peek)
	}

	cr := csv.NewReader(dec)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		rows  [][]string
		lines []int // csv.Reader пропускает пустые строки, номер берём из FieldPos
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, err
		}
		for i := range rec {
			rec[i] = normalizeCell(rec[i])
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
	}
	if len(rows) == 0 {
		return Table{}, nil
	}
	h := pickHeader(rows, headerRow)
	t := rowsToTable(rows, h, headerRow)
	for i, idx := range t.Lines {
		t.Lines[i] = lines[idx-1]
	}
	return t, nil
}

var (
	cyrillicCharsets = map[string]encoding.Encoding{
		"windows-1251": charmap.Windows1251,
		"cp1251":       charmap.Windows1251,
		"koi8-r":       charmap.KOI8R,
		"iso-8859-5":   charmap.ISO8859_5,
	}
	latinCharsets = map[string]encoding.Encoding{
		"windows-1252": charmap.Windows1252,
		"iso-8859-1":   charmap.ISO8859_1,
		"iso-8859-15":  charmap.ISO8859_15,
	}
)

// detectEncoding returns nil for UTF-8 (no decoding needed).
// Для не-UTF-8 всегда возвращает однобайтовую кодировку.
func detectEncoding(peek []byte) encoding.Encoding {
	if len(peek) == 0 || validUTF8Prefix(peek) {
		return nil
	}
	known, fallback := latinCharsets, encoding.Encoding(charmap.Windows1252)
	if mostlyHighLetters(peek) {
		known, fallback = cyrillicCharsets, charmap.Windows1251
	}
	// chardet на коротких выборках путает кириллицу с ISO-8859-8 и т.п.,
	// поэтому берём первый вариант из нужного семейства
	res, err := chardet.NewTextDetector().DetectAll(peek)
	if err != nil {
		return fallback
	}
	for _, r := range res {
		if enc, ok := known[strings.ToLower(r.Charset)]; ok {
			return enc
		}
	}
	return fallback
}

// mostlyHighLetters: среди букв больше половины байтов >= 0xC0.
// Так выглядит кириллица в 1251/KOI8-R; латиница с диакритикой даёт единицы процентов.
func mostlyHighLetters(b []byte) bool {
	high, letters := 0, 0
	for _, c := range b {
		switch {
		case c >= 0xC0:
			high++
			letters++
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			letters++
		}
	}
	return letters > 0 && high*2 > letters
}

// Peek может оборвать многобайтовый символ на границе буфера.
func validUTF8Prefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

func sniffDelimiter(peek []byte) rune {
	line := peek
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		line = peek[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
