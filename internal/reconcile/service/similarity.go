package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	edlib "github.com/hbollon/go-edlib"

	"facility-recon/internal/reconcile/model"
)

// Scorer: симметричная нормированная схожесть строк в [0..100];
// одинаковые строки всегда дают 100.
type Scorer interface {
	Name() string
	Similarity(a, b string) float64
}

const (
	ScorerRatio       = "ratio"
	ScorerTokenSort   = "token_sort"
	ScorerTrigram     = "trigram"
	ScorerJaroWinkler = "jaro_winkler"
)

// Scorers: допустимые имена для конфигурации и флагов.
func Scorers() []string {
	return []string{ScorerRatio, ScorerTokenSort, ScorerTrigram, ScorerJaroWinkler}
}

// NewScorer возвращает реализацию по имени; пустое имя = ratio.
func NewScorer(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ScorerRatio:
		return ratioScorer{}, nil
	case ScorerTokenSort:
		return tokenSortScorer{}, nil
	case ScorerTrigram:
		return trigramScorer{}, nil
	case ScorerJaroWinkler, "jarowinkler", "jw":
		return jaroWinklerScorer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownScorer, name)
	}
}

// ratio: нормированный Damerau-Levenshtein, 100*(1 - d/max(len))
type ratioScorer struct{}

func (ratioScorer) Name() string { return ScorerRatio }

func (ratioScorer) Similarity(a, b string) float64 { return ratio(a, b) }

func ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	d := damerauLevenshtein(ra, rb)
	m := max(len(ra), len(rb))
	return 100 * (1 - float64(d)/float64(m))
}

// token_sort: устойчиво к порядку слов ("Clinic Makeni" == "Makeni Clinic")
type tokenSortScorer struct{}

func (tokenSortScorer) Name() string { return ScorerTokenSort }

func (tokenSortScorer) Similarity(a, b string) float64 {
	x := ratio(a, b)
	if y := ratio(tokenSort(a), tokenSort(b)); y > x {
		return y
	}
	return x
}

// trigram: коэффициент Дайса по множествам триграмм
type trigramScorer struct{}

func (trigramScorer) Name() string { return ScorerTrigram }

func (trigramScorer) Similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	ga, gb := trigramSet(a), trigramSet(b)
	if len(ga) == 0 || len(gb) == 0 {
		return 0
	}
	common := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			common++
		}
	}
	return 100 * 2 * float64(common) / float64(len(ga)+len(gb))
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	r := []rune(" " + s + " ")
	for i := 0; i+3 <= len(r); i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}

type jaroWinklerScorer struct{}

func (jaroWinklerScorer) Name() string { return ScorerJaroWinkler }

func (jaroWinklerScorer) Similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	return 100 * float64(edlib.JaroWinklerSimilarity(a, b))
}

// tokenSort: сортируем токены по алфавиту
func tokenSort(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

// roundScore: 2 знака после запятой, в пределах [0..100].
func roundScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s >= 100 {
		return 100
	}
	// 100 остаётся только за совпадающими строками
	return min(math.Round(s*100)/100, 99.99)
}
