package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLookup(t *testing.T) {
	t.Parallel()
	store := NewStoreFromMap(map[string]string{
		"CLAUDE_API_KEY": "sk-ant-REDACTED",
		OpenAI:           "your_openai_key_here",
		Google:           "AIzaSyExampleKey",
	})

	if got := store.Lookup(Anthropic); got != "sk-ant-REDACTED" {
		t.Fatalf("anthropic alias lookup = %q", got)
	}
	if store.Configured(OpenAI) {
		t.Fatal("placeholder key must not count as configured")
	}
	status := store.Status()
	if !status[Google] || status[OpenAI] || !status[Anthropic] {
		t.Fatalf("status = %v", status)
	}
}

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		value string
		want  bool
	}{
		{"your_api_key", true},
		{"sk-short", true},
		{"sk-0123456789abcdefghijkl", false},
		{"AIzaSyExampleKey", false},
	}
	for _, tt := range tests {
		if got := IsPlaceholder(tt.value); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestNewStoreReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GOOGLE_API_KEY=AIzaFromFile\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(Google, "AIzaFromEnv")

	store := NewStore(path)
	if got := store.Lookup(Google); got != "AIzaFromFile" {
		t.Fatalf("lookup = %q, want value from file", got)
	}

	missing := NewStore(filepath.Join(t.TempDir(), "none.env"))
	if got := missing.Lookup(Google); got != "AIzaFromEnv" {
		t.Fatalf("lookup = %q, want value from env", got)
	}
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{Anthropic, "sk-ant-REDACTED", true},
		{Anthropic, "sk-0123456789abcdefghijklmn", false},
		{OpenAI, "sk-0123456789abcdefghijklmn", true},
		{OpenAI, "pk-0123456789abcdefghijklmn", false},
		{OpenAI, "sk-0123456789", false},
		{Google, "AIzaSy0123456789abcdefghijklmnop", true},
		{Google, "AIzaSy0123456789abcdef", false},
		{Google, "your_google_api_key_goes_here_ok", false},
		{Google, "   ", false},
		{"OTHER_KEY", "0123456789abcdefghij", true},
		{"OTHER_KEY", "0123456789", false},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.name, tt.key)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateFormat(%s, %q) = %v, want valid=%v", tt.name, tt.key, err, tt.valid)
		}
		if err != nil && !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ValidateFormat(%s, %q) error %v is not ErrInvalidFormat", tt.name, tt.key, err)
		}
	}
}
