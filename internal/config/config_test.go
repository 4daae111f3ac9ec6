package config

import (
	"testing"
)

func TestCollectAPIKeysInOrder(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"API_KEY1": "alpha",
		"API_KEY2": "beta",
		"API_KEY3": "gamma",
		"API_KEY5": "orphan", // unreachable past the gap
	}

	keys := collectAPIKeys(func(name string) string { return env[name] })
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d: %v", len(keys), keys)
	}
	if keys[0] != "alpha" || keys[1] != "beta" || keys[2] != "gamma" {
		t.Fatalf("keys out of order: %v", keys)
	}
}

func TestCollectAPIKeysNone(t *testing.T) {
	t.Parallel()

	if keys := collectAPIKeys(func(string) string { return "" }); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Database.DSN = "postgres://localhost/mindscroll"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without API keys")
	}

	cfg.Gemini.APIKeys = []string{"k1"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateSinkModes(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Gemini.APIKeys = []string{"k1"}

	cfg.Sink.Mode = SinkPostgres
	cfg.Database.DSN = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("postgres sink without DSN must fail validation")
	}

	cfg.Sink.Mode = SinkFile
	if err := cfg.Validate(); err != nil {
		t.Fatalf("file sink needs no DSN: %v", err)
	}

	cfg.Sink.Mode = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown sink mode must fail validation")
	}
}

func TestMergeConfigKeepsDefaultsForUnsetFields(t *testing.T) {
	t.Parallel()

	base := defaultConfig()
	merged := mergeConfig(base, Config{
		Database: DatabaseConfig{DSN: "postgres://db/override"},
		Sink:     SinkConfig{Upsert: true},
	})

	if merged.Database.DSN != "postgres://db/override" {
		t.Fatalf("override lost: %s", merged.Database.DSN)
	}
	if !merged.Sink.Upsert {
		t.Fatal("upsert override lost")
	}
	if merged.Sink.Mode != SinkPostgres {
		t.Fatalf("default sink mode lost: %s", merged.Sink.Mode)
	}
	if merged.Resources.SourcesFile != base.Resources.SourcesFile {
		t.Fatalf("default sources file lost: %s", merged.Resources.SourcesFile)
	}
	if merged.Pipeline.SkipOnEmptyEnrichment {
		t.Fatal("stop-on-empty default flipped by empty override")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://env/dsn")
	t.Setenv("SINK_MODE", SinkFile)
	t.Setenv("API_KEY1", "env-key")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env/dsn" {
		t.Fatalf("env DSN not applied: %s", cfg.Database.DSN)
	}
	if cfg.Sink.Mode != SinkFile {
		t.Fatalf("env sink mode not applied: %s", cfg.Sink.Mode)
	}
	if len(cfg.Gemini.APIKeys) != 1 || cfg.Gemini.APIKeys[0] != "env-key" {
		t.Fatalf("env API keys not collected: %v", cfg.Gemini.APIKeys)
	}
}
