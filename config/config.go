package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	postgres_wrapper "github.com/joripage/superorder/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/superorder/pkg/infra/redis"
	kafkawrapper "github.com/joripage/superorder/pkg/kafka_wrapper"
	"github.com/joripage/superorder/pkg/logging"
	"github.com/joripage/superorder/pkg/oms/dhan"
	"github.com/joripage/superorder/pkg/oms/instrument"
	riskrule "github.com/joripage/superorder/pkg/oms/risk_rule"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	BusNone  = "none"
	BusKafka = "kafka"
	BusNATS  = "nats"
)

// Instrument source names, in the order they are tried when Sources is empty.
var defaultSources = []string{"redis", "db", "file", "s3", "http"}

type S3Config struct {
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
}

type InstrumentsConfig struct {
	CSVPath                string   `yaml:"csv_path"`
	MetaPath               string   `yaml:"meta_path"`
	DownloadURL            string   `yaml:"download_url"`
	DownloadRetries        uint64   `yaml:"download_retries"`
	S3                     S3Config `yaml:"s3"`
	RedisKey               string   `yaml:"redis_key"`
	RedisTTLSeconds        int      `yaml:"redis_ttl_seconds"`
	RefreshIntervalSeconds int      `yaml:"refresh_interval_seconds"`
	Sources                []string `yaml:"sources"`
}

func (c InstrumentsConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

func (c InstrumentsConfig) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}

type ValidationConfig struct {
	MarketPricePolicy string `yaml:"market_price_policy"`
	TickSizeFile      string `yaml:"tick_size_file"`
	TagPattern        string `yaml:"tag_pattern"`
}

type EventsConfig struct {
	Bus         string              `yaml:"bus"`
	Kafka       kafkawrapper.Config `yaml:"kafka"`
	NATSURL     string              `yaml:"nats_url"`
	Stream      string              `yaml:"stream"`
	Subject     string              `yaml:"subject"`
	Durable     string              `yaml:"durable"`
	PersistToDB bool                `yaml:"persist_to_db"`
}

type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	Log         logging.Config                   `yaml:"log"`
	Dhan        dhan.Config                      `yaml:"dhan"`
	Instruments InstrumentsConfig                `yaml:"instruments"`
	Validation  ValidationConfig                 `yaml:"validation"`
	OmsDB       *postgres_wrapper.PostgresConfig `yaml:"oms_db"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	Events      EventsConfig                     `yaml:"events"`
	Metrics     MetricsConfig                    `yaml:"metrics"`
	Server      ServerConfig                     `yaml:"server"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}

	cfg, err := Parse(configBytes)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: service=%s bus=%s sources=%v", cfg.ServiceName, cfg.Events.Bus, cfg.Instruments.Sources)

	return cfg, nil
}

// Parse expands environment variables in data, decodes it and applies
// defaults. The result is validated.
func Parse(data []byte) (*AppConfig, error) {
	data = []byte(os.ExpandEnv(string(data)))

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "superorder"
	}
	if c.Dhan.BaseURL == "" {
		c.Dhan.BaseURL = dhan.DefaultBaseURL
	}
	if c.Instruments.DownloadURL == "" {
		c.Instruments.DownloadURL = instrument.DefaultMasterURL
	}
	if c.Instruments.RedisKey == "" {
		c.Instruments.RedisKey = instrument.DefaultRedisKey
	}
	if len(c.Instruments.Sources) == 0 {
		c.Instruments.Sources = append([]string(nil), defaultSources...)
	}
	if c.Events.Bus == "" {
		c.Events.Bus = BusNone
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "SUPERORDER.events"
	}
	if c.Events.Stream == "" {
		c.Events.Stream = "SUPERORDER"
	}
	if c.Events.Durable == "" {
		c.Events.Durable = "placement_event_worker"
	}
	if c.Events.Kafka.Topic == "" {
		c.Events.Kafka.Topic = "superorder.placement-events"
	}
	if c.Events.Kafka.GroupID == "" {
		c.Events.Kafka.GroupID = "placement-event-worker"
	}
}

// Validate reports every invalid setting at once.
func (c *AppConfig) Validate() error {
	var errs []error

	if _, err := riskrule.ParseMarketPolicy(c.Validation.MarketPricePolicy); err != nil {
		errs = append(errs, err)
	}
	if c.Instruments.RefreshIntervalSeconds < 0 {
		errs = append(errs, errors.New("instruments.refresh_interval_seconds must not be negative"))
	}
	for _, s := range c.Instruments.Sources {
		switch s {
		case "redis", "db", "file", "s3", "http":
		default:
			errs = append(errs, fmt.Errorf("instruments.sources: unknown source %q", s))
		}
	}
	if c.Instruments.S3.Bucket != "" && c.Instruments.S3.Key == "" {
		errs = append(errs, errors.New("instruments.s3.key is required when a bucket is set"))
	}

	switch c.Events.Bus {
	case BusNone:
	case BusKafka:
		if len(c.Events.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("events.kafka.brokers is required for the kafka bus"))
		}
	case BusNATS:
		if c.Events.NATSURL == "" {
			errs = append(errs, errors.New("events.nats_url is required for the nats bus"))
		}
	default:
		errs = append(errs, fmt.Errorf("events.bus: unknown bus %q", c.Events.Bus))
	}
	if c.Events.PersistToDB && c.OmsDB == nil {
		errs = append(errs, errors.New("events.persist_to_db needs oms_db"))
	}

	return errors.Join(errs...)
}

// CheckDhanCredentials is used by commands that talk to the broker.
func (c *AppConfig) CheckDhanCredentials() error {
	if c.Dhan.ClientID == "" || c.Dhan.AccessToken == "" {
		return errors.New("dhan.client_id and dhan.access_token are required")
	}
	return nil
}
