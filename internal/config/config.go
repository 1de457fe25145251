package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds one trigger analysis run, loaded from a YAML file. API
// credentials come from the environment, never the file.
type Config struct {
	Maproom           string   `yaml:"maproom"`
	Mode              int      `yaml:"mode"`
	Season            string   `yaml:"season"`
	Predictor         string   `yaml:"predictor"`
	Predictand        string   `yaml:"predictand"`
	Year              int      `yaml:"year"`
	BadYears          []int    `yaml:"bad_years"`
	IssueMonths       []int    `yaml:"issue_months"`
	Frequencies       []int    `yaml:"frequencies"`
	IncludeUpcoming   bool     `yaml:"include_upcoming"`
	ThresholdProtocol float64  `yaml:"threshold_protocol"`
	NeedValidKeys     bool     `yaml:"need_valid_keys"`
	ValidKeys         []string `yaml:"valid_keys"`

	Decision Decision `yaml:"decision"`
	Kafka    Kafka    `yaml:"kafka"`

	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	RegionCacheSize int           `yaml:"region_cache_size"`
	MetricsAddr     string        `yaml:"metrics_addr"` // empty disables the admin server

	// Basic-auth credentials from MAPROOM_USERNAME / MAPROOM_PASSWORD.
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

// Decision holds the linear value/cost model and the risk tolerances to sweep.
type Decision struct {
	ValueTruePositive float64   `yaml:"value_true_positive"`
	CostFalsePositive float64   `yaml:"cost_false_positive"`
	ValueTrueNegative float64   `yaml:"value_true_negative"`
	CostFalseNegative float64   `yaml:"cost_false_negative"`
	RiskTolerances    []float64 `yaml:"risk_tolerances"`
}

// Kafka configures the optional trigger-table publish sink.
type Kafka struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Load reads and validates a config file, applying defaults where unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		LogLevel:        "info",
		LogFormat:       "json",
		RequestTimeout:  30 * time.Second,
		RegionCacheSize: 100,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Username = os.Getenv("MAPROOM_USERNAME")
	cfg.Password = os.Getenv("MAPROOM_PASSWORD")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Maproom == "" {
		return errors.New("maproom is required")
	}
	if c.Predictor == "" {
		return errors.New("predictor is required")
	}
	if c.Predictand == "" {
		return errors.New("predictand is required")
	}
	if len(c.IssueMonths) == 0 {
		return errors.New("issue_months is required")
	}
	for _, m := range c.IssueMonths {
		if m < 0 || m > 11 {
			return fmt.Errorf("issue_months: %d is out of range 0-11", m)
		}
	}
	if len(c.Frequencies) == 0 {
		return errors.New("frequencies is required")
	}
	for _, f := range c.Frequencies {
		if f <= 0 || f > 100 {
			return fmt.Errorf("frequencies: %d is out of range 1-100", f)
		}
	}
	if c.NeedValidKeys && c.Mode != 0 && len(c.ValidKeys) == 0 {
		return errors.New("need_valid_keys is true but valid_keys is empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.RegionCacheSize <= 0 {
		return errors.New("region_cache_size must be positive")
	}
	for _, rt := range c.Decision.RiskTolerances {
		if rt < 0 || rt > 1 {
			return fmt.Errorf("decision.risk_tolerances: %g is out of range 0-1", rt)
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.enabled is true but kafka.brokers is empty")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka.enabled is true but kafka.topic is empty")
		}
	}
	return nil
}
