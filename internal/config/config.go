package config

import (
	"log"
	"time"

	"tasktracker/pkg/config"
)

type Config struct {
	Server   config.ServerConfig `yaml:"server"`
	Store    config.StoreConfig  `yaml:"store"`
	Redis    config.RedisConfig  `yaml:"redis"`
	MQ       config.MQConfig     `yaml:"mq"`
	Otel     config.OtelConfig   `yaml:"otel"`
	LogLevel string              `yaml:"log_level"`
}

// Load 使用统一配置中心加载配置，环境变量优先级最高
func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfg := Default()
	if err := config.Decode(env, configDir, cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideStoreFromEnv(&cfg.Store)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideOtelFromEnv(&cfg.Otel)
	cfg.LogLevel = config.GetEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg
}

// Default values apply to keys missing from the YAML files.
func Default() *Config {
	return &Config{
		Server: config.ServerConfig{
			Port:            ":5000",
			ShutdownSeconds: 30,
		},
		Store: config.StoreConfig{
			Driver:      "postgres",
			SlowQueryMS: 100,
		},
		Redis: config.RedisConfig{
			IdempotencyTTLSeconds: 86400,
		},
		LogLevel: "info",
	}
}

// Location resolves Server.TimeZone; empty means the server's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Server.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Server.TimeZone)
}
