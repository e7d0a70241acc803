package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"facility-recon/internal/reconcile/model"
)

var punct = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// normalize: конвейер перед подсчётом схожести. Пробелы схлопываются всегда,
// остальное по опциям.
func normalize(s string, opt model.Normalize) string {
	if s == "" {
		return ""
	}
	out := s

	// 1) Диакритика: "Kénéma" → "Kenema"
	if opt.FoldDiacritics {
		out = foldDiacritics(out)
	}

	// 2) Регистр
	if opt.Lowercase {
		out = strings.ToLower(out)
	}

	// 3) Пунктуация → пробел ("St. Mary's" → "St Mary s")
	if opt.StripPunct {
		out = punct.ReplaceAllString(out, " ")
	}

	out = collapseSpaces(out)

	// 4) Сортировка токенов
	if opt.TokenSort {
		out = tokenSort(out)
	}
	return out
}

// transform.Transformer хранит состояние, поэтому цепочка собирается на каждый вызов.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Схлопывание пробелов (strings.Fields понимает и NBSP)
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
