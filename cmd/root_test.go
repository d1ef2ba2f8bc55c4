// file: cmd/root_test.go
// version: 2.0.0
// guid: 7eae8d0c-7fda-4f45-8f73-5d1e0c7c9f1a

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jdfalk/newsdeck/internal/config"
)

func TestInitConfigReadsFileAndEnv(t *testing.T) {
	tempDir := t.TempDir()
	cfgPath := filepath.Join(tempDir, "newsdeck.yaml")
	if err := os.WriteFile(cfgPath, []byte("default_league: nba\nsports_poll_interval: 45s\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	envPath := filepath.Join(tempDir, ".env")
	if err := os.WriteFile(envPath, []byte("NEWSDECK_DEFAULT_SPORT=basketball\n"), 0o644); err != nil {
		t.Fatalf("failed to write env: %v", err)
	}

	origCfgFile, origEnvFile := cfgFile, envFile
	origConfig := config.AppConfig
	defer func() {
		cfgFile, envFile = origCfgFile, origEnvFile
		config.AppConfig = origConfig
		os.Unsetenv("NEWSDECK_DEFAULT_SPORT")
	}()

	cfgFile = cfgPath
	envFile = envPath
	initConfig()

	if config.AppConfig.DefaultLeague != "nba" {
		t.Errorf("expected default_league from file, got %q", config.AppConfig.DefaultLeague)
	}
	if config.AppConfig.SportsPollInterval.Seconds() != 45 {
		t.Errorf("expected 45s poll interval, got %v", config.AppConfig.SportsPollInterval)
	}
	if config.AppConfig.DefaultSport != "basketball" {
		t.Errorf("expected default_sport from .env, got %q", config.AppConfig.DefaultSport)
	}
}

func TestInitConfigMissingEnvFile(t *testing.T) {
	tempDir := t.TempDir()

	origCfgFile, origEnvFile := cfgFile, envFile
	origConfig := config.AppConfig
	defer func() {
		cfgFile, envFile = origCfgFile, origEnvFile
		config.AppConfig = origConfig
	}()

	t.Setenv("HOME", tempDir)
	cfgFile = ""
	envFile = filepath.Join(tempDir, "missing.env")

	initConfig()

	if config.AppConfig.CacheBackend == "" {
		t.Error("expected defaults to be applied")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"serve", "feed", "read", "weather", "scores", "standings", "prefetch", "config", "diagnostics"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q", name)
		}
	}
}
