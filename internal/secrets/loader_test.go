package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("writing key: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("writing key: %v", err)
	}

	t.Setenv("SKILLGAP_TEST_KEY", " from-env ")

	tests := []struct {
		name    string
		src     Source
		expect  string
		errPart string
	}{
		{
			name:   "file wins",
			src:    Source{Name: "api key", File: keyFile, Env: "SKILLGAP_TEST_KEY", Value: "inline"},
			expect: "from-file",
		},
		{
			name:   "env beats inline value",
			src:    Source{Env: "SKILLGAP_TEST_KEY", Value: "inline"},
			expect: "from-env",
		},
		{
			name:   "unset env falls back to value",
			src:    Source{Env: "SKILLGAP_TEST_UNSET", Value: " inline "},
			expect: "inline",
		},
		{
			name:    "empty file",
			src:     Source{Name: "api key", File: emptyFile, Value: "inline"},
			errPart: "is empty",
		},
		{
			name:    "missing file",
			src:     Source{File: filepath.Join(dir, "nope")},
			errPart: "reading secret from file",
		},
		{
			name:    "nothing configured",
			src:     Source{Name: "gemini api key", Env: "SKILLGAP_TEST_UNSET"},
			errPart: "gemini api key is not configured (checked $SKILLGAP_TEST_UNSET)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.errPart != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errPart) {
					t.Fatalf("expected error containing %q, got %v", tt.errPart, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
