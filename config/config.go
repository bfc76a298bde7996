package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the process configuration settings.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Redis         RedisConfig         `yaml:"redis"`
	Observability ObservabilityConfig `yaml:"observability"`
	Quiz          QuizConfig          `yaml:"quiz"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. NKeySeed is optional; when set the
// event bus authenticates with an nkey challenge.
type NATSConfig struct {
	URL      string `yaml:"url"`
	NKeySeed string `yaml:"nkey_seed"`
}

// RedisConfig holds the connection settings of the vote-bonus store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ObservabilityConfig holds logging, metrics, and tracing settings.
type ObservabilityConfig struct {
	Environment     string  `yaml:"environment"`
	MetricsAddress  string  `yaml:"metrics_address"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// QuizConfig holds the process-wide quiz tunables that are not part of the
// per-guild configuration snapshot.
type QuizConfig struct {
	// RoundStartDelayMS debounces round starts against rapid restarts.
	RoundStartDelayMS int `yaml:"round_start_delay_ms"`
	// MultiGuessWindowMS is the grace window during which additional correct
	// guesses still score after the first.
	MultiGuessWindowMS int `yaml:"multi_guess_window_ms"`
	// PowerHours lists local hours that double EXP like weekends do.
	PowerHours []int `yaml:"power_hours"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file is absent. Environment variables
// override file values either way.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		cfg.NATS.NKeySeed = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Observability.TraceSampleRate = f
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
	if c.Observability.MetricsAddress == "" {
		c.Observability.MetricsAddress = ":9090"
	}
	if c.Observability.TraceSampleRate <= 0 {
		c.Observability.TraceSampleRate = 0.1
	}
	if c.Quiz.RoundStartDelayMS <= 0 {
		c.Quiz.RoundStartDelayMS = 2000
	}
	if c.Quiz.MultiGuessWindowMS <= 0 {
		c.Quiz.MultiGuessWindowMS = 1500
	}
}
