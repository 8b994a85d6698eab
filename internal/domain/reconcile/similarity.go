package reconcile

import (
	"regexp"
	"strings"
)

// Composite score weights. Token overlap dominates; order and raw character
// closeness refine it.
const (
	weightTokenSet = 0.60
	weightTokenLCS = 0.25
	weightCharLCS  = 0.15

	permutationFloor = 0.95
	subsetFloor      = 0.92
	scoreCeiling     = 0.99

	// maxExtraTokens is the largest token-count gap still treated as a
	// middle-name or extra-surname variant of the same person.
	maxExtraTokens = 2
)

var (
	nonLetterPattern = regexp.MustCompile(`[^а-яa-z\s]`)
	spacePattern     = regexp.MustCompile(`\s+`)
	tokenSplitter    = regexp.MustCompile("[-'`]+")
)

// NormalizeName folds a player name for comparison: lowercase, ё folded to е,
// everything but Cyrillic and Latin letters dropped, spaces collapsed.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "ё", "е")
	s = nonLetterPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func nameTokens(name string) []string {
	s := tokenSplitter.ReplaceAllString(NormalizeName(name), " ")
	fields := strings.Fields(s)
	return fields
}

// tokenSetScore is the Jaccard index over token sets.
func tokenSetScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}
	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// tokenLCSScore is the longest common subsequence over tokens, normalized by
// the longer token count. Order-preserving.
func tokenLCSScore(a, b []string) float64 {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return 0
	}
	return float64(lcsLength(a, b)) / float64(max(m, n))
}

// charLCSScore is the longest common subsequence over the space-stripped
// normalized strings.
func charLCSScore(name1, name2 string) float64 {
	a := strings.ReplaceAll(NormalizeName(name1), " ", "")
	b := strings.ReplaceAll(NormalizeName(name2), " ", "")
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	runesA := make([]string, len(ra))
	for i, r := range ra {
		runesA[i] = string(r)
	}
	runesB := make([]string, len(rb))
	for i, r := range rb {
		runesB[i] = string(r)
	}
	return float64(lcsLength(runesA, runesB)) / float64(max(len(ra), len(rb)))
}

func lcsLength(a, b []string) int {
	m, n := len(a), len(b)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

func isTwoTokenPermutation(a, b []string) bool {
	return len(a) == 2 && len(b) == 2 && a[0] == b[1] && a[1] == b[0]
}

// isSubsetWithExtras reports whether every token of the shorter name occurs
// in the longer one, with at most maxExtraTokens left over.
func isSubsetWithExtras(a, b []string) bool {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 || len(longer)-len(shorter) > maxExtraTokens {
		return false
	}
	longerSet := make(map[string]struct{}, len(longer))
	for _, t := range longer {
		longerSet[t] = struct{}{}
	}
	for _, t := range shorter {
		if _, ok := longerSet[t]; !ok {
			return false
		}
	}
	return true
}

// Similarity scores two player names in [0, 1]. Identical normalized names
// score exactly 1; any other pair is capped at 0.99.
func Similarity(name1, name2 string) float64 {
	if name1 == "" || name2 == "" {
		return 0
	}

	n1 := NormalizeName(name1)
	n2 := NormalizeName(name2)
	if n1 == "" || n2 == "" {
		return 0
	}
	if n1 == n2 {
		return 1
	}

	t1 := nameTokens(name1)
	t2 := nameTokens(name2)

	set := tokenSetScore(t1, t2)
	order := tokenLCSScore(t1, t2)
	chars := charLCSScore(name1, name2)

	lenDiff := len(t1) - len(t2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	maxLen := max(len(t1), len(t2))
	lenPenalty := 1.0
	if maxLen > 0 {
		ratio := float64(lenDiff) / float64(maxLen)
		if ratio > 1 {
			ratio = 1
		}
		lenPenalty = 1 - ratio
	}

	score := (weightTokenSet*set + weightTokenLCS*order + weightCharLCS*chars) * (0.9 + 0.1*lenPenalty)

	if isTwoTokenPermutation(t1, t2) && score < permutationFloor {
		score = permutationFloor
	}
	if isSubsetWithExtras(t1, t2) && score < subsetFloor {
		score = subsetFloor
	}

	if score < 0 {
		return 0
	}
	if score > scoreCeiling {
		return scoreCeiling
	}
	return score
}
