package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nfrund/relay/internal/config"
	"github.com/nfrund/relay/internal/logging"
)

// ConfigForTests returns a validated config.Provider for tests. Variables from
// an optional .env.test file at the project root are applied with t.Setenv,
// then overrides (config keys to values) take precedence over everything.
func ConfigForTests(t *testing.T, overrides map[string]any) config.Provider {
	t.Helper()

	if root, ok := projectRoot(); ok {
		env, err := godotenv.Read(filepath.Join(root, ".env.test"))
		if err != nil && !os.IsNotExist(err) {
			t.Fatalf("failed to load .env.test file: %v", err)
		}
		for key, value := range env {
			t.Setenv(key, value)
		}
	}

	v := viper.New()
	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg, err := config.New(v)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	logging.New(cfg.GetLogFormat(), cfg.GetLogLevel())
	return cfg
}

// projectRoot walks up from the working directory to the directory holding go.mod.
func projectRoot() (string, bool) {
	path, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path, true
		}
		if path == filepath.Dir(path) {
			return "", false
		}
		path = filepath.Dir(path)
	}
}
