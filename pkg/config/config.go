// Package config reads runtime settings from a .env file and LINGODEMO_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "LINGODEMO_"

// DefaultEnvFile is loaded when present.
const DefaultEnvFile = ".env"

// Config holds every setting shared by the CLI and the server.
type Config struct {
	Addr          string
	DBPath        string
	LanguagesFile string
	JiebaDict     string
	JMdictPath    string
	MoeDictURL    string
	LookupTimeout time.Duration
	LogFile       string
	LogLevel      string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:          ":8080",
		DBPath:        "lingodemo.db",
		JMdictPath:    "jmdict-eng-common.json",
		MoeDictURL:    "https://www.moedict.tw",
		LookupTimeout: 10 * time.Second,
		LogLevel:      "info",
	}
}

// Load reads envFile into the process environment, then builds a Config from
// defaults overridden by LINGODEMO_* variables. Variables already set in the
// environment win over the file. A missing envFile is not an error.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", envFile, err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config using lookup for variable values.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("ADDR", &cfg.Addr)
	str("DB", &cfg.DBPath)
	str("LANGUAGES_FILE", &cfg.LanguagesFile)
	str("JIEBA_DICT", &cfg.JiebaDict)
	str("JMDICT", &cfg.JMdictPath)
	str("MOEDICT_URL", &cfg.MoeDictURL)
	str("LOG_FILE", &cfg.LogFile)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup(EnvPrefix + "LOOKUP_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%sLOOKUP_TIMEOUT: %w", EnvPrefix, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("%sLOOKUP_TIMEOUT must be positive, got %s", EnvPrefix, v)
		}
		cfg.LookupTimeout = d
	}
	return cfg, nil
}
