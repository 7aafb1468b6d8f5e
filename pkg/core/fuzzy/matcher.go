// Package fuzzy - Weighted multi-algorithm string similarity
// Used by template detection, confidence scoring and override matching.
package fuzzy

import (
	"fmt"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// MatcherConfig controls algorithm weighting and caching
type MatcherConfig struct {
	LevenshteinWeight float64 `yaml:"levenshtein_weight"`
	JaroWinklerWeight float64 `yaml:"jaro_winkler_weight"`
	NGramWeight       float64 `yaml:"ngram_weight"`
	SoundexWeight     float64 `yaml:"soundex_weight"`
	MinConfidence     float64 `yaml:"min_confidence"`
	CacheSize         int     `yaml:"cache_size"`
	CaseSensitive     bool    `yaml:"case_sensitive"`
}

// DefaultMatcherConfig returns the standard algorithm weighting
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		LevenshteinWeight: 0.3,
		JaroWinklerWeight: 0.4,
		NGramWeight:       0.2,
		SoundexWeight:     0.1,
		MinConfidence:     0.7,
		CacheSize:         1000,
		CaseSensitive:     false,
	}
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// AlgorithmContribution records one algorithm's share of a match score
type AlgorithmContribution struct {
	Algorithm            string  `json:"algorithm"`
	RawScore             float64 `json:"raw_score"`
	Weight               float64 `json:"weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
}

// WeightedCalculation lets a caller reconstruct the final score by hand
type WeightedCalculation struct {
	TotalWeightedScore float64 `json:"total_weighted_score"`
	TotalWeight        float64 `json:"total_weight"`
	FinalScore         float64 `json:"final_score"`
}

// MatchResult is the full outcome of comparing two strings
type MatchResult struct {
	Source        string                  `json:"source"`
	Target        string                  `json:"target"`
	Score         float64                 `json:"score"`
	IsMatch       bool                    `json:"is_match"`
	Contributions []AlgorithmContribution `json:"contributions"`
	Calculation   WeightedCalculation     `json:"calculation"`
}

// =============================================================================
// MATCHER
// =============================================================================

// Matcher combines several similarity algorithms into one weighted score.
// Safe for concurrent use; the result cache is internally synchronized.
type Matcher struct {
	config MatcherConfig
	cache  *lru.Cache[string, MatchResult]
}

// NewMatcher creates a matcher with the given configuration
func NewMatcher(config MatcherConfig) (*Matcher, error) {
	size := config.CacheSize
	if size <= 0 {
		size = 1000
	}
	cache, err := lru.New[string, MatchResult](size)
	if err != nil {
		return nil, fmt.Errorf("fuzzy matcher cache: %w", err)
	}
	return &Matcher{config: config, cache: cache}, nil
}

// NewDefaultMatcher creates a matcher with default weights
func NewDefaultMatcher() *Matcher {
	m, err := NewMatcher(DefaultMatcherConfig())
	if err != nil {
		// default config cache size is always valid
		panic(err)
	}
	return m
}

// Match scores source against target with the full algorithm breakdown
func (m *Matcher) Match(source, target string) MatchResult {
	key := source + "\x00" + target
	if cached, ok := m.cache.Get(key); ok {
		return cached
	}

	a, b := source, target
	if !m.config.CaseSensitive {
		a = strings.ToLower(a)
		b = strings.ToLower(b)
	}

	algos := []struct {
		name   string
		weight float64
		score  func(string, string) float64
	}{
		{"levenshtein", m.config.LevenshteinWeight, LevenshteinSimilarity},
		{"jaro_winkler", m.config.JaroWinklerWeight, JaroWinklerSimilarity},
		{"ngram", m.config.NGramWeight, NGramSimilarity},
		{"soundex", m.config.SoundexWeight, SoundexSimilarity},
	}

	contributions := make([]AlgorithmContribution, 0, len(algos))
	totalWeighted := 0.0
	totalWeight := 0.0
	for _, alg := range algos {
		if alg.weight <= 0 {
			continue
		}
		raw := alg.score(a, b)
		weighted := raw * alg.weight
		contributions = append(contributions, AlgorithmContribution{
			Algorithm:            alg.name,
			RawScore:             raw,
			Weight:               alg.weight,
			WeightedContribution: weighted,
		})
		totalWeighted += weighted
		totalWeight += alg.weight
	}

	final := 0.0
	if totalWeight > 0 {
		final = totalWeighted / totalWeight
	}

	result := MatchResult{
		Source:        source,
		Target:        target,
		Score:         final,
		IsMatch:       final >= m.config.MinConfidence,
		Contributions: contributions,
		Calculation: WeightedCalculation{
			TotalWeightedScore: totalWeighted,
			TotalWeight:        totalWeight,
			FinalScore:         final,
		},
	}
	m.cache.Add(key, result)
	return result
}

// BestMatch scores source against each candidate and returns the highest.
// Returns false when no candidate reaches the configured minimum confidence.
func (m *Matcher) BestMatch(source string, candidates []string) (MatchResult, bool) {
	var best MatchResult
	found := false
	for _, candidate := range candidates {
		result := m.Match(source, candidate)
		if !result.IsMatch {
			continue
		}
		if !found || result.Score > best.Score {
			best = result
			found = true
		}
	}
	return best, found
}

// =============================================================================
// SIMILARITY ALGORITHMS
// =============================================================================

// Similarity is the baseline normalized edit-distance similarity.
// Identical strings (including both empty) score 1.0 and the function
// is symmetric in its arguments.
func Similarity(a, b string) float64 {
	return LevenshteinSimilarity(a, b)
}

// LevenshteinSimilarity converts edit distance to a [0,1] similarity:
// 1 - distance/max(len). Identical strings score 1.0.
func LevenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshteinDistance(ra, rb)
	return 1.0 - float64(dist)/float64(maxLen)
}

func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// JaroWinklerSimilarity computes Jaro similarity with the Winkler
// common-prefix bonus (up to 4 characters, scaling factor 0.1)
func JaroWinklerSimilarity(a, b string) float64 {
	jaro := jaroSimilarity([]rune(a), []rune(b))
	if jaro == 0 {
		return 0
	}

	prefix := 0
	ra, rb := []rune(a), []rune(b)
	for prefix < len(ra) && prefix < len(rb) && prefix < 4 && ra[prefix] == rb[prefix] {
		prefix++
	}
	return jaro + float64(prefix)*0.1*(1.0-jaro)
}

func jaroSimilarity(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	window := maxInt(len(a), len(b))/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, len(a))
	bMatched := make([]bool, len(b))
	matches := 0
	for i := range a {
		lo := maxInt(0, i-window)
		hi := minInt2(len(b)-1, i+window)
		for j := lo; j <= hi; j++ {
			if bMatched[j] || a[i] != b[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0.0
	}

	transpositions := 0
	k := 0
	for i := range a {
		if !aMatched[i] {
			continue
		}
		for !bMatched[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(len(a)) + m/float64(len(b)) + (m-float64(transpositions)/2)/m) / 3.0
}

// NGramSimilarity is the Dice coefficient over character bigrams
func NGramSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ga, gb := bigrams(a), bigrams(b)
	if len(ga) == 0 || len(gb) == 0 {
		return 0.0
	}

	counts := make(map[string]int, len(ga))
	for _, g := range ga {
		counts[g]++
	}
	overlap := 0
	for _, g := range gb {
		if counts[g] > 0 {
			counts[g]--
			overlap++
		}
	}
	return 2.0 * float64(overlap) / float64(len(ga)+len(gb))
}

func bigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	grams := make([]string, 0, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		grams = append(grams, string(runes[i:i+2]))
	}
	return grams
}

// SoundexSimilarity returns 1.0 when two strings share a Soundex code,
// 0.5 when only the leading code letter matches, else 0.0
func SoundexSimilarity(a, b string) float64 {
	sa, sb := soundex(a), soundex(b)
	if sa == "" || sb == "" {
		if sa == sb {
			return 1.0
		}
		return 0.0
	}
	if sa == sb {
		return 1.0
	}
	if sa[0] == sb[0] {
		return 0.5
	}
	return 0.0
}

func soundex(s string) string {
	var letters []rune
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) && r < 128 {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return ""
	}

	code := func(r rune) byte {
		switch r {
		case 'B', 'F', 'P', 'V':
			return '1'
		case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
			return '2'
		case 'D', 'T':
			return '3'
		case 'L':
			return '4'
		case 'M', 'N':
			return '5'
		case 'R':
			return '6'
		}
		return 0
	}

	out := []byte{byte(letters[0])}
	last := code(letters[0])
	for _, r := range letters[1:] {
		c := code(r)
		if c != 0 && c != last {
			out = append(out, c)
			if len(out) == 4 {
				break
			}
		}
		if r != 'H' && r != 'W' {
			last = c
		}
	}
	for len(out) < 4 {
		out = append(out, '0')
	}
	return string(out)
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func minInt2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
