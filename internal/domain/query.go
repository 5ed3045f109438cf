package domain

import (
	"strings"
)

// Query represents a parsed user input
type Query struct {
	Raw    string   // Original input
	Tokens []string // Slash-separated tokens, lowercased, never empty
}

// ParseQuery parses user input into a structured query
// Examples:
//   - "gh"               -> ["gh"] (host only)
//   - "github/rust"      -> ["github", "rust"] (host + last path segment)
//   - "/gh//rl/rust/"    -> ["gh", "rl", "rust"]
func ParseQuery(input string) (*Query, error) {
	raw := strings.TrimSpace(input)
	tokens := splitAndClean(strings.ToLower(raw), "/")
	if len(tokens) == 0 {
		return nil, ErrMalformedQuery
	}
	return &Query{Raw: raw, Tokens: tokens}, nil
}

// First returns the token matched against the host segment.
func (q *Query) First() string { return q.Tokens[0] }

// Last returns the token matched against the last path segment.
// For a single-token query it is the same as First.
func (q *Query) Last() string { return q.Tokens[len(q.Tokens)-1] }

// Intermediate returns the tokens strictly between First and Last.
func (q *Query) Intermediate() []string {
	if len(q.Tokens) < 3 {
		return nil
	}
	return q.Tokens[1 : len(q.Tokens)-1]
}
