package domain

import (
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

const (
	// Sub-match weights
	MatchRuneScore  = 1.0 // every matched rune
	MatchRunBonus   = 2.0 // matched rune directly following the previous one
	MatchStartBonus = 3.0 // first rune matched at index 0
	MatchExactBonus = 5.0 // every rune of the target matched
	MatchGapPenalty = 0.5 // unmatched rune inside the matched span

	// SkipPenalty is subtracted per intermediate URL segment left unmatched.
	SkipPenalty = 2.0
)

// MatchQuality describes how tightly a query aligned with a URL.
type MatchQuality struct {
	Score   float64 // combined value used for tie-breaking
	Host    float64 // score of the first token against the host
	Path    float64 // summed score of the path tokens
	Skipped int     // intermediate path segments not consumed
}

// Match aligns query tokens against a URL's segments.
//
// The first token must fuzzy-match the host. With a single token the path is
// never looked at. Otherwise the last token must match the last path segment
// and every intermediate token must match a distinct path segment, in order,
// strictly before the last one. Intermediate URL segments may be skipped;
// query tokens may not. Path segments are compared in their decoded form,
// so "wiki/москва" reaches "/wiki/%D0%9C%D0%BE%D1%81%D0%BA%D0%B2%D0%B0".
func Match(tokens []string, host string, path []string) (MatchQuality, bool) {
	if len(tokens) == 0 {
		return MatchQuality{}, false
	}

	hostScore, ok := FuzzyScore(tokens[0], host)
	if !ok {
		return MatchQuality{}, false
	}
	q := MatchQuality{Host: hostScore}

	if len(tokens) == 1 {
		q.Score = hostScore
		return q, true
	}

	if len(path) == 0 {
		return MatchQuality{}, false
	}
	path = unescapeSegments(path)
	lastIdx := len(path) - 1
	lastScore, ok := FuzzyScore(tokens[len(tokens)-1], path[lastIdx])
	if !ok {
		return MatchQuality{}, false
	}
	q.Path = lastScore

	// Greedy earliest alignment of intermediate tokens in [cursor, lastIdx).
	cursor := 0
	for _, tok := range tokens[1 : len(tokens)-1] {
		matched := false
		for cursor < lastIdx {
			s, ok := FuzzyScore(tok, path[cursor])
			cursor++
			if ok {
				q.Path += s
				matched = true
				break
			}
		}
		if !matched {
			return MatchQuality{}, false
		}
	}

	q.Skipped = lastIdx - (len(tokens) - 2)
	q.Score = q.Host + q.Path - SkipPenalty*float64(q.Skipped)
	return q, true
}

// FuzzyScore reports whether every rune of token appears in target in order
// and, if so, how tight the alignment is. Consecutive runs and a match
// anchored at the start score higher than scattered runes.
func FuzzyScore(token, target string) (float64, bool) {
	if token == "" || target == "" {
		return 0, false
	}
	matches := fuzzy.Find(token, []string{target})
	if len(matches) == 0 {
		return 0, false
	}
	return alignmentScore(runeIndexes(matches[0].MatchedIndexes, target), target), true
}

// runeIndexes converts the byte offsets reported by fuzzy.Find into rune
// positions so that multi-byte segments score like ASCII ones.
func runeIndexes(byteIdx []int, target string) []int {
	pos := make(map[int]int, len(target))
	n := 0
	for i := range target {
		pos[i] = n
		n++
	}
	out := make([]int, 0, len(byteIdx))
	for _, b := range byteIdx {
		out = append(out, pos[b])
	}
	return out
}

// alignmentScore scores a set of matched rune positions within target.
func alignmentScore(idx []int, target string) float64 {
	if len(idx) == 0 {
		return 0
	}

	score := MatchRuneScore * float64(len(idx))
	for i := 1; i < len(idx); i++ {
		if idx[i] == idx[i-1]+1 {
			score += MatchRunBonus
		}
	}
	if idx[0] == 0 {
		score += MatchStartBonus
	}
	if len(idx) == utf8.RuneCountInString(target) {
		score += MatchExactBonus
	}

	gaps := (idx[len(idx)-1] - idx[0] + 1) - len(idx)
	score -= MatchGapPenalty * float64(gaps)

	return score
}
