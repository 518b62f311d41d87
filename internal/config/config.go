package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Clicks   ClicksConfig   `json:"clicks"`
	Auth     AuthConfig     `json:"auth"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
	BaseURL     string `json:"base_url"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	SSLMode  string `json:"sslmode"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type ClicksConfig struct {
	BufferSize    int `json:"buffer_size"`
	BatchSize     int `json:"batch_size"`
	FlushSeconds  int `json:"flush_seconds"`
	PasswordTries int `json:"password_tries_per_minute"`
}

type AuthConfig struct {
	JWTSecret   string `json:"jwt_secret"`
	ExpiryHours int    `json:"expiry_hours"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// Load reads the JSON config file and applies environment overrides.
// Environment variables win so deployments never edit the file.
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func applyEnv(cfg *Config) {
	overrideString(&cfg.Server.Port, "PORT")
	overrideString(&cfg.Server.Environment, "ENVIRONMENT")
	overrideString(&cfg.Server.BaseURL, "BASE_URL")

	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideString(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Database.Name, "DB_NAME")
	overrideString(&cfg.Database.SSLMode, "DB_SSLMODE")

	overrideString(&cfg.Redis.Host, "REDIS_HOST")
	overrideString(&cfg.Redis.Port, "REDIS_PORT")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideInt(&cfg.Redis.DB, "REDIS_DB")

	overrideString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	overrideInt(&cfg.Auth.ExpiryHours, "JWT_EXPIRY_HOURS")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:" + cfg.Server.Port
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Clicks.BufferSize <= 0 {
		cfg.Clicks.BufferSize = 1000
	}
	if cfg.Clicks.BatchSize <= 0 {
		cfg.Clicks.BatchSize = 100
	}
	if cfg.Clicks.FlushSeconds <= 0 {
		cfg.Clicks.FlushSeconds = 5
	}
	if cfg.Clicks.PasswordTries <= 0 {
		cfg.Clicks.PasswordTries = 10
	}
	if cfg.Auth.ExpiryHours <= 0 {
		cfg.Auth.ExpiryHours = 24
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
