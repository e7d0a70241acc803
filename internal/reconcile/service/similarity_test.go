package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility-recon/internal/reconcile/model"
)

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"Helath", "Health", 1}, // перестановка соседних букв
		{"ca", "abc", 3},        // OSA: без повторного редактирования подстроки
		{"Кенема", "Кенеma", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, damerauLevenshtein([]rune(tt.a), []rune(tt.b)), "%q/%q", tt.a, tt.b)
		assert.Equal(t, tt.want, damerauLevenshtein([]rune(tt.b), []rune(tt.a)), "%q/%q", tt.b, tt.a)
	}
}

func TestNewScorer(t *testing.T) {
	tests := map[string]string{
		"":             ScorerRatio,
		"ratio":        ScorerRatio,
		" Token_Sort ": ScorerTokenSort,
		"trigram":      ScorerTrigram,
		"jaro_winkler": ScorerJaroWinkler,
		"jw":           ScorerJaroWinkler,
	}
	for in, want := range tests {
		sc, err := NewScorer(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, sc.Name())
	}

	_, err := NewScorer("cosine")
	assert.ErrorIs(t, err, model.ErrUnknownScorer)
}

func TestScorersContract(t *testing.T) {
	pairs := [][2]string{
		{"Freetown Clinic", "Freetown Clinic"},
		{"Makeni Helath Post", "Makeni Health Post"},
		{"Clinic Makeni", "Makeni Clinic"},
		{"Zebra Unrelated Name", "Freetown Clinic"},
		{"", "Bo"},
		{"", ""},
	}
	for _, name := range Scorers() {
		sc, err := NewScorer(name)
		require.NoError(t, err)
		t.Run(name, func(t *testing.T) {
			for _, p := range pairs {
				ab := sc.Similarity(p[0], p[1])
				ba := sc.Similarity(p[1], p[0])
				assert.InDelta(t, ab, ba, 1e-9, "symmetric %q/%q", p[0], p[1])
				assert.GreaterOrEqual(t, ab, 0.0)
				assert.LessOrEqual(t, ab, 100.0)
				if p[0] == p[1] {
					assert.Equal(t, 100.0, ab)
				}
			}
			typo := sc.Similarity("Makeni Helath Post", "Makeni Health Post")
			unrelated := sc.Similarity("Zebra Unrelated Name", "Makeni Health Post")
			assert.Greater(t, typo, unrelated)
		})
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 87.5, ratio("Clinic A", "Clinic B"))
	assert.Equal(t, 0.0, ratio("", "x"))
	assert.Equal(t, 100.0, ratio("", ""))
}

func TestTokenSortScorer(t *testing.T) {
	sc := tokenSortScorer{}
	assert.Equal(t, 100.0, sc.Similarity("Clinic Makeni", "Makeni Clinic"))
	assert.Less(t, ratio("Clinic Makeni", "Makeni Clinic"), 100.0)
}

func TestTrigramSet(t *testing.T) {
	assert.Empty(t, trigramSet(""))
	assert.Equal(t, map[string]struct{}{" ab": {}, "ab ": {}}, trigramSet("ab"))
	assert.Len(t, trigramSet("Bo"), 2)
}

func TestRoundScore(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{math.NaN(), 0},
		{-3, 0},
		{0, 0},
		{94.4444, 94.44},
		{87.5, 87.5},
		{99.996, 99.99},
		{100, 100},
		{100.5, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundScore(tt.in), "%v", tt.in)
	}
}
