package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Extract  ExtractConfig  `yaml:"extract"`
	Collect  CollectConfig  `yaml:"collect"`
	Sample   SampleConfig   `yaml:"sample"`
	Notify   NotifyConfig   `yaml:"notify"`
	LogLevel string         `yaml:"log_level"`
}

type RabbitMQConfig struct {
	URL              string `yaml:"url"`
	Exchange         string `yaml:"exchange"`
	RoutingKey       string `yaml:"routing_key"`
	QueueName        string `yaml:"queue_name"`
	NotifyRoutingKey string `yaml:"notify_routing_key"`
	NotifyQueue      string `yaml:"notify_queue"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type FetchConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Retry             RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type ExtractConfig struct {
	MinTextLength int `yaml:"min_text_length"`
}

type CollectConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Interval    time.Duration `yaml:"interval"`
}

type SampleConfig struct {
	Concurrency    int      `yaml:"concurrency"`
	DigestPatterns []string `yaml:"digest_patterns"`
}

type NotifyConfig struct {
	Recipients []string `yaml:"recipients"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.DBName == "" {
		c.Database.DBName = "corpora"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "corpora"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "articles"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "corpora_articles"
	}
	if c.RabbitMQ.NotifyRoutingKey == "" {
		c.RabbitMQ.NotifyRoutingKey = "notifications"
	}
	if c.RabbitMQ.NotifyQueue == "" {
		c.RabbitMQ.NotifyQueue = "corpora_mail"
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Fetch.MaxBodyBytes == 0 {
		c.Fetch.MaxBodyBytes = 10 << 20
	}
	if c.Fetch.RequestsPerSecond == 0 {
		c.Fetch.RequestsPerSecond = 2
	}
	if c.Fetch.Retry.MaxAttempts == 0 {
		c.Fetch.Retry.MaxAttempts = 5
	}
	if c.Fetch.Retry.InitialBackoff == 0 {
		c.Fetch.Retry.InitialBackoff = 1 * time.Second
	}
	if c.Fetch.Retry.MaxBackoff == 0 {
		c.Fetch.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Extract.MinTextLength == 0 {
		c.Extract.MinTextLength = 400
	}
	if c.Collect.Concurrency == 0 {
		c.Collect.Concurrency = 4
	}
	if c.Collect.Interval == 0 {
		c.Collect.Interval = 1 * time.Hour
	}
	if c.Sample.Concurrency == 0 {
		c.Sample.Concurrency = 1
	}
	if c.Sample.DigestPatterns == nil {
		c.Sample.DigestPatterns = []string{"Wikinews Shorts"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DefaultUserAgent is sent to article hosts. Several publishers answer 403
// to anything that does not look like a browser.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
