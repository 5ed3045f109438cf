package domain

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Segments is the comparable decomposition of a URL.
type Segments struct {
	Host       string   // whole host, matched as a single token
	Path       []string // non-empty path segments, in order
	BaseDomain string   // registrable domain of Host
}

// Segment splits rawURL into its host and path segments.
// Examples:
//   - "https://github.com/rust-lang/rust" -> "github.com", ["rust-lang", "rust"]
//   - "www.GitHub.com//a/?q=1#top"        -> "github.com", ["a"]
//   - "https://github.com"                -> "github.com", []
//
// The scheme is optional. Query string, fragment, userinfo and port never
// produce segments. Path segments stay escaped so that segmenting the
// reconstructed "host/seg/seg" yields the same tokens.
func Segment(rawURL string) (Segments, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return Segments{}, fmt.Errorf("%w: empty url", ErrMalformedURL)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return Segments{}, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return Segments{}, fmt.Errorf("%w: no host in %q", ErrMalformedURL, rawURL)
	}

	return Segments{
		Host:       host,
		Path:       splitAndClean(strings.ToLower(u.EscapedPath()), "/"),
		BaseDomain: BaseDomain(host),
	}, nil
}

// String rebuilds the scheme-less form "host/seg/seg".
func (s Segments) String() string {
	if len(s.Path) == 0 {
		return s.Host
	}
	return s.Host + "/" + strings.Join(s.Path, "/")
}

// BaseDomain returns the registrable domain (eTLD+1) of host.
// IP addresses, single labels and bare public suffixes are returned as-is.
func BaseDomain(host string) string {
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

// unescapeSegments decodes escaped path segments into the form a user
// types. A segment that does not decode is kept as stored.
func unescapeSegments(path []string) []string {
	out := make([]string, len(path))
	for i, seg := range path {
		out[i] = seg
		if !strings.Contains(seg, "%") {
			continue
		}
		if dec, err := url.PathUnescape(seg); err == nil {
			out[i] = strings.ToLower(dec)
		}
	}
	return out
}

// splitAndClean splits a string by separator and returns non-empty parts
func splitAndClean(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
