package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	LanguageTool LanguageToolConfig `yaml:"languagetool"`
	LLM          LLMConfig          `yaml:"llm"`
	CORS         CORSConfig         `yaml:"cors"`
	Log          LogConfig          `yaml:"log"`
}

// HTTPConfig holds the inbound server settings.
type HTTPConfig struct {
	Host            string        `yaml:"host"             env:"HTTP_HOST"          env-default:"0.0.0.0"`
	Port            string        `yaml:"port"             env:"PORT"               env-default:"8000"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"  env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_IDLE_TIMEOUT"  env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"   env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"MAX_BODY_BYTES"     env-default:"262144"`
}

// LanguageToolConfig holds the grammar-service client settings.
type LanguageToolConfig struct {
	URL     string        `yaml:"url"     env:"LANGUAGETOOL_URL"     env-default:"http://127.0.0.1:8010"`
	Timeout time.Duration `yaml:"timeout" env:"LANGUAGETOOL_TIMEOUT" env-default:"30s"`
}

// LLMConfig holds the Gemini enrichment settings. An empty APIKey disables
// enrichment regardless of Enabled.
type LLMConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLE_LLM" env-default:"true"`
	APIKey  string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model   string `yaml:"model"   env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
}

// CORSConfig holds the browser origin allow-list.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173,http://127.0.0.1:3000"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Addr returns the host:port the server listens on.
func (c HTTPConfig) Addr() string {
	return c.Host + ":" + strings.TrimPrefix(c.Port, ":")
}

// Active reports whether enrichment may run at all.
func (c LLMConfig) Active() bool {
	return c.Enabled && strings.TrimSpace(c.APIKey) != ""
}

// Origins returns the parsed origin allow-list.
func (c CORSConfig) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags). The YAML path
// comes from CONFIG_PATH (fallback "./config.yaml"); when no file exists
// and CONFIG_PATH was not set, ENV + defaults alone are used.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	return &cfg, nil
}
