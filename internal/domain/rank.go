package domain

import (
	"sort"
	"time"
)

// Candidate is a record that survived matching, with its scores.
type Candidate struct {
	Record   *Record
	Quality  MatchQuality // textual alignment, tie-breaker
	Frecency float64      // visit count × recency, primary key
}

// RankCandidates matches every record against the query and orders the
// survivors highest-first.
func RankCandidates(query *Query, records []*Record, policy FrecencyPolicy, now time.Time) []*Candidate {
	candidates := make([]*Candidate, 0, len(records))

	for _, rec := range records {
		quality, ok := Match(query.Tokens, rec.Host, rec.Path)
		if !ok {
			continue
		}
		candidates = append(candidates, &Candidate{
			Record:   rec,
			Quality:  quality,
			Frecency: policy.Score(rec.VisitCount, rec.LastAccessed, now),
		})
	}

	SortCandidates(candidates)
	return candidates
}

// RankByFrecency orders every record by frecency alone (no query).
func RankByFrecency(records []*Record, policy FrecencyPolicy, now time.Time) []*Candidate {
	candidates := make([]*Candidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, &Candidate{
			Record:   rec,
			Frecency: policy.Score(rec.VisitCount, rec.LastAccessed, now),
		})
	}
	SortCandidates(candidates)
	return candidates
}

// SortCandidates sorts by frecency, then match quality, then URL.
// The order is total: equal keys only happen for the same URL.
func SortCandidates(candidates []*Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Frecency != b.Frecency {
			return a.Frecency > b.Frecency
		}
		if a.Quality.Score != b.Quality.Score {
			return a.Quality.Score > b.Quality.Score
		}
		return a.Record.URL < b.Record.URL
	})
}

// FindBestMatch returns the top-ranked candidate for a query, or ErrNoMatch.
func FindBestMatch(query *Query, records []*Record, policy FrecencyPolicy, now time.Time) (*Candidate, error) {
	candidates := RankCandidates(query, records, policy, now)
	if len(candidates) == 0 {
		return nil, ErrNoMatch
	}
	return candidates[0], nil
}
