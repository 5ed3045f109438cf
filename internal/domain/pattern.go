package domain

import (
	"errors"
	"strings"
)

// URLPattern is the small anchored syntax accepted by `otot prune --pattern`:
// "^" anchors at the start, "$" at the end, `\.` is a literal dot and
// anything else is a plain substring.
type URLPattern struct {
	Literal     string
	AnchorStart bool
	AnchorEnd   bool
}

// ParseURLPattern parses p. An empty literal is rejected so that a stray
// "^" or "$" never matches every record.
func ParseURLPattern(p string) (URLPattern, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\.`, ".")
	pat := URLPattern{}
	if strings.HasPrefix(p, "^") {
		pat.AnchorStart = true
		p = p[1:]
	}
	if strings.HasSuffix(p, "$") {
		pat.AnchorEnd = true
		p = p[:len(p)-1]
	}
	if p == "" {
		return URLPattern{}, errors.New("url pattern must contain at least one character to match")
	}
	pat.Literal = p
	return pat, nil
}

// Like renders the pattern as a SQL LIKE expression using '\' as escape.
func (p URLPattern) Like() string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	like := r.Replace(p.Literal)
	if !p.AnchorStart {
		like = "%" + like
	}
	if !p.AnchorEnd {
		like += "%"
	}
	return like
}

// MatchString reports whether s matches, ignoring ASCII case like SQL LIKE.
func (p URLPattern) MatchString(s string) bool {
	s, lit := strings.ToLower(s), strings.ToLower(p.Literal)
	switch {
	case p.AnchorStart && p.AnchorEnd:
		return s == lit
	case p.AnchorStart:
		return strings.HasPrefix(s, lit)
	case p.AnchorEnd:
		return strings.HasSuffix(s, lit)
	default:
		return strings.Contains(s, lit)
	}
}
