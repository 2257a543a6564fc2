// Package config loads engine settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds the configuration for the engine binaries.
type Config struct {
	Engine EngineConfig `envPrefix:"ENGINE_"`
	Feed   FeedConfig   `envPrefix:"FEED_"`
	Kafka  KafkaConfig  `envPrefix:"KAFKA_"`
	Outbox OutboxConfig `envPrefix:"OUTBOX_"`
	Log    LogConfig    `envPrefix:"LOG_"`
}

type EngineConfig struct {
	// Capacity caps resting orders across all books; 0 removes the cap.
	Capacity int `env:"CAPACITY" envDefault:"1048576"`
	// PrintExecutions writes one line per execution to stdout.
	PrintExecutions bool `env:"PRINT_EXECUTIONS" envDefault:"true"`
}

type FeedConfig struct {
	// CSVPath is an order file loaded at startup; empty skips it.
	CSVPath string `env:"CSV_PATH"`
}

// KafkaConfig holds the order consumer and execution publisher settings.
// Kafka is off unless Brokers is set.
type KafkaConfig struct {
	Brokers        []string `env:"BROKERS" envSeparator:","`
	OrderTopic     string   `env:"ORDER_TOPIC" envDefault:"orders"`
	GroupID        string   `env:"GROUP_ID" envDefault:"matchbook"`
	ExecutionTopic string   `env:"EXECUTION_TOPIC" envDefault:"executions"`
	// Client picks the execution publisher: "sarama" or "kafka-go".
	Client string `env:"CLIENT" envDefault:"sarama"`
}

type OutboxConfig struct {
	// Dir is the pebble directory; empty disables the outbox.
	Dir        string        `env:"DIR"`
	Interval   time.Duration `env:"INTERVAL" envDefault:"250ms"`
	MaxRetries uint32        `env:"MAX_RETRIES" envDefault:"5"`
	Prune      bool          `env:"PRUNE" envDefault:"true"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// Load reads envFiles (missing files are ignored, the default is .env) and
// then parses the environment. Variables already set win over the files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "config: load %s", f)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: parse env")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(envFiles ...string) Config {
	cfg, err := Load(envFiles...)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c Config) Validate() error {
	if c.Engine.Capacity < 0 {
		return errors.Errorf("config: ENGINE_CAPACITY must not be negative, got %d", c.Engine.Capacity)
	}
	switch c.Kafka.Client {
	case "sarama", "kafka-go":
	default:
		return errors.Errorf("config: KAFKA_CLIENT must be sarama or kafka-go, got %q", c.Kafka.Client)
	}
	if c.Kafka.Enabled() && c.Kafka.GroupID == "" {
		return errors.New("config: KAFKA_GROUP_ID is required when KAFKA_BROKERS is set")
	}
	return nil
}
