package domain

import (
	"errors"
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedTokens []string
		expectedInter  []string
	}{
		{
			name:           "single token",
			input:          "github",
			expectedTokens: []string{"github"},
		},
		{
			name:           "host and last segment",
			input:          "github/rust",
			expectedTokens: []string{"github", "rust"},
		},
		{
			name:           "intermediate tokens",
			input:          "github/rust/issues/42",
			expectedTokens: []string{"github", "rust", "issues", "42"},
			expectedInter:  []string{"rust", "issues"},
		},
		{
			name:           "empty segments filtered",
			input:          "/github//rust/",
			expectedTokens: []string{"github", "rust"},
		},
		{
			name:           "lowercased and trimmed",
			input:          "  GitHub/Rust/Issues ",
			expectedTokens: []string{"github", "rust", "issues"},
			expectedInter:  []string{"rust"},
		},
		{
			name:           "dots stay inside the token",
			input:          "github.com/rust",
			expectedTokens: []string{"github.com", "rust"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuery(tt.input)
			if err != nil {
				t.Fatalf("ParseQuery(%q) error = %v", tt.input, err)
			}
			if !slicesEqual(q.Tokens, tt.expectedTokens) {
				t.Errorf("Tokens = %v, want %v", q.Tokens, tt.expectedTokens)
			}
			if !slicesEqual(q.Intermediate(), tt.expectedInter) {
				t.Errorf("Intermediate() = %v, want %v", q.Intermediate(), tt.expectedInter)
			}
			if q.First() != tt.expectedTokens[0] {
				t.Errorf("First() = %q, want %q", q.First(), tt.expectedTokens[0])
			}
			if q.Last() != tt.expectedTokens[len(tt.expectedTokens)-1] {
				t.Errorf("Last() = %q, want %q", q.Last(), tt.expectedTokens[len(tt.expectedTokens)-1])
			}
		})
	}
}

func TestParseQueryRejectsEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "/", "///"} {
		_, err := ParseQuery(input)
		if !errors.Is(err, ErrMalformedQuery) {
			t.Errorf("ParseQuery(%q) error = %v, want ErrMalformedQuery", input, err)
		}
	}
	if ErrMalformedQuery.Error() != "provided address must be a non-empty string" {
		t.Errorf("unexpected message: %q", ErrMalformedQuery.Error())
	}
}
