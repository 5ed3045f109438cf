package domain

import "testing"

func TestClassifyInput(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectedKind InputKind
		expectedURL  string
	}{
		{
			name:         "explicit https scheme",
			input:        "https://github.com/rust-lang/rust",
			expectedKind: InputURL,
			expectedURL:  "https://github.com/rust-lang/rust",
		},
		{
			name:         "explicit scheme with port",
			input:        "http://localhost:8080/api",
			expectedKind: InputURL,
			expectedURL:  "http://localhost:8080/api",
		},
		{
			name:         "host lowercased, path preserved",
			input:        "https://GitHub.COM/Rust-Lang",
			expectedKind: InputURL,
			expectedURL:  "https://github.com/Rust-Lang",
		},
		{
			name:         "domain without scheme gets https",
			input:        "github.com/rust-lang/rust",
			expectedKind: InputURL,
			expectedURL:  "https://github.com/rust-lang/rust",
		},
		{
			name:         "domain with port gets http",
			input:        "example.com:3000/path",
			expectedKind: InputURL,
			expectedURL:  "http://example.com:3000/path",
		},
		{
			name:         "localhost with port",
			input:        "localhost:8080",
			expectedKind: InputURL,
			expectedURL:  "http://localhost:8080",
		},
		{
			name:         "ip with port",
			input:        "192.168.1.1:3000/api",
			expectedKind: InputURL,
			expectedURL:  "http://192.168.1.1:3000/api",
		},
		{
			name:         "query and fragment preserved",
			input:        "github.com/search?q=rust#top",
			expectedKind: InputURL,
			expectedURL:  "https://github.com/search?q=rust#top",
		},
		{
			name:         "fuzzy pattern",
			input:        "github/rust/issues",
			expectedKind: InputPattern,
		},
		{
			name:         "single word pattern",
			input:        "github",
			expectedKind: InputPattern,
		},
		{
			name:         "empty input",
			input:        "",
			expectedKind: InputPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ClassifyInput(tt.input)
			if in.Kind != tt.expectedKind {
				t.Fatalf("Kind = %v, want %v", in.Kind, tt.expectedKind)
			}
			if tt.expectedKind == InputURL && in.URL.String() != tt.expectedURL {
				t.Errorf("URL = %q, want %q", in.URL.String(), tt.expectedURL)
			}
		})
	}
}
