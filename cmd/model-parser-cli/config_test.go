package main

import (
	"os"
	"path/filepath"
	"testing"
)

// resetFlags restores global flag state after each test.
func resetFlags(t *testing.T) {
	t.Helper()
	orig := struct{ url, key, fmt string }{flagURL, flagKey, flagFmt}
	t.Cleanup(func() {
		flagURL = orig.url
		flagKey = orig.key
		flagFmt = orig.fmt
	})
}

// isolateEnv points HOME at an empty dir and clears the CLI variables.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MODEL_PARSER_URL", "")
	t.Setenv("MODEL_PARSER_API_KEY", "")
	return home
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, ".model-parser")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveConfig(t *testing.T) {
	tests := []struct {
		name    string
		flagURL string
		flagKey string
		envURL  string
		envKey  string
		config  string
		wantURL string
		wantKey string
	}{
		{name: "defaults", flagURL: defaultURL, wantURL: defaultURL},
		{name: "env", flagURL: defaultURL, envURL: "http://env:9", envKey: "env-key", wantURL: "http://env:9", wantKey: "env-key"},
		{name: "flag beats env", flagURL: "http://flag:1", flagKey: "flag-key", envURL: "http://env:9", envKey: "env-key", wantURL: "http://flag:1", wantKey: "flag-key"},
		{name: "flat config", flagURL: defaultURL, config: "url: http://file:2\napi_key: file-key\n", wantURL: "http://file:2", wantKey: "file-key"},
		{name: "env beats config", flagURL: defaultURL, envURL: "http://env:9", config: "url: http://file:2\napi_key: file-key\n", wantURL: "http://env:9", wantKey: "file-key"},
		{
			name:    "active profile",
			flagURL: defaultURL,
			config:  "url: http://flat:1\nactive_profile: prod\nprofiles:\n  prod:\n    url: http://prod:3\n    api_key: prod-key\n  default:\n    url: http://dflt:4\n",
			wantURL: "http://prod:3",
			wantKey: "prod-key",
		},
		{
			name:    "default profile",
			flagURL: defaultURL,
			config:  "profiles:\n  default:\n    url: http://dflt:4\n",
			wantURL: "http://dflt:4",
		},
		{name: "malformed config ignored", flagURL: defaultURL, config: "url: [", wantURL: defaultURL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags(t)
			home := isolateEnv(t)
			t.Setenv("MODEL_PARSER_URL", tc.envURL)
			t.Setenv("MODEL_PARSER_API_KEY", tc.envKey)
			if tc.config != "" {
				writeConfig(t, home, tc.config)
			}

			flagURL, flagKey = tc.flagURL, tc.flagKey
			resolveConfig()

			if flagURL != tc.wantURL {
				t.Errorf("url = %q, want %q", flagURL, tc.wantURL)
			}
			if flagKey != tc.wantKey {
				t.Errorf("key = %q, want %q", flagKey, tc.wantKey)
			}
		})
	}
}
