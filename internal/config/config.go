package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Token        string        `mapstructure:"token"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	RetryCount   int           `mapstructure:"retry_count"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type QueueConfig struct {
	// Store selects the durable backend for queued actions: "postgres" or "redis".
	Store         string        `mapstructure:"store"`
	DatabaseURL   string        `mapstructure:"database_url"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	DrainInterval time.Duration `mapstructure:"drain_interval"`
}

type ConnectivityConfig struct {
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
}

type Config struct {
	ServerPort   string             `mapstructure:"server_port"`
	HospitalID   string             `mapstructure:"hospital_id"`
	API          APIConfig          `mapstructure:"api"`
	Poll         PollConfig         `mapstructure:"poll"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Error unmarshalling config: %v", err)
	}

	ApplyDefaults(&config)

	if config.HospitalID == "" {
		log.Fatal("hospital_id must be set in the config file")
	}
	if config.API.BaseURL == "" {
		log.Fatal("api.base_url must be set in the config file")
	}

	return &config
}

// ApplyDefaults fills unset fields with their fallback values.
func ApplyDefaults(config *Config) {
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.API.Timeout == 0 {
		config.API.Timeout = 15 * time.Second
	}
	if config.API.ProbeTimeout == 0 {
		config.API.ProbeTimeout = 3 * time.Second
	}
	if config.API.RetryCount == 0 {
		config.API.RetryCount = 2
	}
	if config.Poll.Interval == 0 {
		config.Poll.Interval = 30 * time.Second
	}
	if config.Queue.Store == "" {
		config.Queue.Store = "postgres"
	}
	if config.Queue.DrainInterval == 0 {
		config.Queue.DrainInterval = time.Minute
	}
	if config.Connectivity.ProbeInterval == 0 {
		config.Connectivity.ProbeInterval = 10 * time.Second
	}
}
