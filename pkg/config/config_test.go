package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"LINGODEMO_ADDR":           "127.0.0.1:9000",
		"LINGODEMO_DB":             "/tmp/x.db",
		"LINGODEMO_JIEBA_DICT":     "dict.txt",
		"LINGODEMO_LOOKUP_TIMEOUT": "2s",
		"LINGODEMO_LOG_LEVEL":      " debug ",
		"LINGODEMO_MOEDICT_URL":    "",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.DBPath != "/tmp/x.db" || cfg.JiebaDict != "dict.txt" {
		t.Errorf("string overrides not applied: %+v", cfg)
	}
	if cfg.LookupTimeout != 2*time.Second {
		t.Errorf("LookupTimeout = %v", cfg.LookupTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.MoeDictURL != Default().MoeDictURL {
		t.Errorf("empty value should keep default, got %q", cfg.MoeDictURL)
	}
}

func TestFromEnvBadTimeout(t *testing.T) {
	for _, v := range []string{"soon", "-1s", "0s"} {
		if _, err := FromEnv(envMap(map[string]string{"LINGODEMO_LOOKUP_TIMEOUT": v})); err == nil {
			t.Errorf("expected error for %q", v)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("LINGODEMO_LANGUAGES_FILE=langs.yaml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LINGODEMO_LANGUAGES_FILE", "")
	os.Unsetenv("LINGODEMO_LANGUAGES_FILE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LanguagesFile != "langs.yaml" {
		t.Errorf("LanguagesFile = %q", cfg.LanguagesFile)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}
