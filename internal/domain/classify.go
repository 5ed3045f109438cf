package domain

import (
	"net/url"
	"strings"
)

// InputKind tells how raw user input should be interpreted.
type InputKind int

const (
	// InputPattern is a fuzzy query such as "gh/rust".
	InputPattern InputKind = iota
	// InputURL is an address that can be opened as-is.
	InputURL
)

func (k InputKind) String() string {
	if k == InputURL {
		return "url"
	}
	return "pattern"
}

// Input is the classification of raw user input.
type Input struct {
	Kind InputKind
	URL  *url.URL // set when Kind == InputURL
}

// ClassifyInput decides whether input is a full URL or a fuzzy pattern.
//
// Rules, in order:
//  1. an explicit scheme ("https://...") that parses with a host is a URL;
//  2. otherwise a scheme is inferred (http when the input holds a ':' such
//     as "localhost:8080", https elsewhere) and the result is a URL when its
//     host contains a dot or a port is given ("github.com/x", "10.0.0.1:3000");
//  3. anything else ("github/rust") is a pattern.
//
// Hosts are lowercased; path, query and fragment are preserved.
func ClassifyInput(input string) Input {
	input = strings.TrimSpace(input)
	if input == "" {
		return Input{Kind: InputPattern}
	}

	if strings.Contains(input, "://") {
		if u, err := url.Parse(input); err == nil && u.Host != "" {
			u.Host = strings.ToLower(u.Host)
			return Input{Kind: InputURL, URL: u}
		}
	}

	scheme := "https"
	if strings.Contains(input, ":") {
		scheme = "http"
	}
	u, err := url.Parse(scheme + "://" + input)
	if err == nil && u.Host != "" {
		if strings.Contains(u.Hostname(), ".") || u.Port() != "" {
			u.Host = strings.ToLower(u.Host)
			return Input{Kind: InputURL, URL: u}
		}
	}

	return Input{Kind: InputPattern}
}
