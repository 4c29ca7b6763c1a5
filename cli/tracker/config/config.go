package config

/*
Описание конфигурационного файла
*/

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"gopkg.in/yaml.v2"
)

type Settings struct {
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	ApiPort            int32  `yaml:"api_port" validate:"gte=0,lte=65535"`
	ConnTTL            int    `yaml:"conn_ttl" validate:"gte=0"`
	MaxLineBytes       int    `yaml:"max_line_bytes" validate:"gte=0"`
	RateBucketMS       int    `yaml:"rate_bucket_ms" validate:"gte=0"`
	RateLimitPerBucket int    `yaml:"rate_limit_per_bucket" validate:"gte=0"`
	SubscriberBuffer   int    `yaml:"subscriber_buffer" validate:"gte=0"`
	RetentionDays      int    `yaml:"retention_days" validate:"gte=0"`
	RetentionCron      string `yaml:"retention_cron"`
	ApiKey             string `yaml:"api_key"`

	CorsOrigins []string `yaml:"cors_origins"`

	LogLevel      string `yaml:"log_level"`
	LogFilePath   string `yaml:"log_file_path"`
	LogMaxAgeDays int    `yaml:"log_max_age_days" validate:"gte=0"`

	MigrationsPath string                       `yaml:"migrations_path"`
	Store          map[string]map[string]string `yaml:"storage"`
	StoreBuffer    int                          `yaml:"storage_buffer" validate:"gte=0"`
	StoreWorkers   int                          `yaml:"storage_workers" validate:"gte=0"`
}

func (s *Settings) GetEmptyConnTTL() time.Duration {
	return time.Duration(s.ConnTTL) * time.Second
}

func (s *Settings) GetListenAddress() string {
	return s.Host + ":" + s.Port
}

func (s *Settings) GetRateBucketWindow() time.Duration {
	return time.Duration(s.RateBucketMS) * time.Millisecond
}

func (s *Settings) GetLogLevel() log.Level {
	var lvl log.Level

	switch s.LogLevel {
	case "DEBUG":
		lvl = log.DebugLevel
	case "INFO":
		lvl = log.InfoLevel
	case "WARN":
		lvl = log.WarnLevel
	case "ERROR":
		lvl = log.ErrorLevel
	default:
		lvl = log.InfoLevel
	}
	return lvl
}

func New(confPath string) (Settings, error) {
	c := Settings{}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, err
	}

	if c.Port == "" {
		c.Port = "9331"
	}
	if c.ApiPort == 0 {
		c.ApiPort = 8080
	}
	if c.ConnTTL == 0 {
		c.ConnTTL = 90
	}
	if c.MaxLineBytes == 0 {
		c.MaxLineBytes = 1024
	}
	if c.RateBucketMS == 0 {
		c.RateBucketMS = 10000
	}
	if c.RateLimitPerBucket == 0 {
		c.RateLimitPerBucket = 120
	}
	if c.SubscriberBuffer == 0 {
		c.SubscriberBuffer = 16
	}
	if c.RetentionCron == "" {
		c.RetentionCron = "@every 6h"
	}
	if c.StoreBuffer == 0 {
		c.StoreBuffer = 1024
	}

	// ключ API удобнее хранить в окружении, а не в файле
	if c.ApiKey == "" {
		c.ApiKey = os.Getenv("TRACKER_API_KEY")
	}

	if err := validator.New().Struct(&c); err != nil {
		return c, err
	}

	return c, nil
}
