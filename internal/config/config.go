package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "MINDSCROLL_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	classifierURLEnv  = "CLASSIFIER_URL"
	geminiEndpointEnv = "GEMINI_ENDPOINT"
	geminiModelEnv    = "GEMINI_MODEL"
	sinkModeEnv       = "SINK_MODE"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	apiKeyEnvPrefix   = "API_KEY"
)

// SinkMode selects where accepted batches are written.
const (
	SinkPostgres = "postgres"
	SinkFile     = "file"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Resources     ResourceConfig     `yaml:"resources"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Sink          SinkConfig         `yaml:"sink"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ResourceConfig points at the flat files loaded once per run.
type ResourceConfig struct {
	SourcesFile    string `yaml:"sourcesFile"`
	CategoriesFile string `yaml:"categoriesFile"`
}

// ClassifierConfig describes the zero-shot inference service.
type ClassifierConfig struct {
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// GeminiConfig defines how to contact the generative endpoint. Keys are
// supplied through API_KEY1..N environment variables, in order.
type GeminiConfig struct {
	Endpoint string   `yaml:"endpoint"`
	Model    string   `yaml:"model"`
	APIKeys  []string `yaml:"-"`
}

// PipelineConfig carries run-level ingestion policy. The default (false)
// halts the run on the first empty enrichment; setting
// skipOnEmptyEnrichment keeps going and only drops the failed entry.
type PipelineConfig struct {
	SkipOnEmptyEnrichment bool `yaml:"skipOnEmptyEnrichment"`
}

// SinkConfig selects and parameterizes the article sink variant.
type SinkConfig struct {
	Mode        string `yaml:"mode"`        // postgres or file
	Upsert      bool   `yaml:"upsert"`      // re-sync mode, preserves counters
	ContentFile string `yaml:"contentFile"` // file sink backing path
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.Gemini.APIKeys = collectAPIKeys(os.Getenv)

	return cfg
}

// Validate checks startup-fatal conditions.
func (c Config) Validate() error {
	if len(c.Gemini.APIKeys) == 0 {
		return fmt.Errorf("no generative API keys configured (set %s1, %s2, ...)", apiKeyEnvPrefix, apiKeyEnvPrefix)
	}
	if c.Sink.Mode != SinkPostgres && c.Sink.Mode != SinkFile {
		return fmt.Errorf("unknown sink mode %q", c.Sink.Mode)
	}
	if c.Sink.Mode == SinkPostgres && c.Database.DSN == "" {
		return fmt.Errorf("postgres sink requires a database DSN")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(classifierURLEnv); v != "" {
		c.Classifier.InferenceURL = v
	}

	if v := os.Getenv(geminiEndpointEnv); v != "" {
		c.Gemini.Endpoint = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(sinkModeEnv); v != "" {
		c.Sink.Mode = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

// collectAPIKeys gathers API_KEY1..N in order, stopping at the first gap.
func collectAPIKeys(getenv func(string) string) []string {
	var keys []string
	for i := 1; ; i++ {
		key := getenv(apiKeyEnvPrefix + strconv.Itoa(i))
		if key == "" {
			break
		}
		keys = append(keys, key)
	}
	return keys
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Resources.SourcesFile != "" {
		base.Resources.SourcesFile = override.Resources.SourcesFile
	}
	if override.Resources.CategoriesFile != "" {
		base.Resources.CategoriesFile = override.Resources.CategoriesFile
	}

	if override.Classifier.InferenceURL != "" {
		base.Classifier.InferenceURL = override.Classifier.InferenceURL
	}
	if override.Classifier.APIKey != "" {
		base.Classifier.APIKey = override.Classifier.APIKey
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}

	if override.Pipeline.SkipOnEmptyEnrichment {
		base.Pipeline.SkipOnEmptyEnrichment = true
	}

	if override.Sink.Mode != "" {
		base.Sink.Mode = override.Sink.Mode
	}
	if override.Sink.Upsert {
		base.Sink.Upsert = true
	}
	if override.Sink.ContentFile != "" {
		base.Sink.ContentFile = override.Sink.ContentFile
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: ""},
		Resources: ResourceConfig{
			SourcesFile:    "resources/rss_urls.txt",
			CategoriesFile: "resources/categories.txt",
		},
		Classifier: ClassifierConfig{
			InferenceURL: "http://localhost:8500/classify",
		},
		Gemini: GeminiConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta/models",
			Model:    "gemini-1.5-flash",
		},
		Pipeline: PipelineConfig{SkipOnEmptyEnrichment: false},
		Sink: SinkConfig{
			Mode:        SinkPostgres,
			Upsert:      false,
			ContentFile: "content/content.json",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
