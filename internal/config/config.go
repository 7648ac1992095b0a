package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML/JSON keys to Go struct fields.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port    int    `mapstructure:"port"`     // HTTP server port (default: 8080)
		BaseURL string `mapstructure:"base_url"` // Base URL for generating public profile URLs
	} `mapstructure:"server"`

	// Database configuration section for SQLite settings
	Database struct {
		Name string `mapstructure:"name"` // SQLite database file name
	} `mapstructure:"database"`

	// Analytics configuration for asynchronous click auditing
	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`  // Size of the click event channel buffer
		WorkerCount int `mapstructure:"worker_count"` // Number of worker goroutines for processing clicks
	} `mapstructure:"analytics"`

	// Monitor configuration for link reachability checking
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // Interval in minutes between link checks
	} `mapstructure:"monitor"`

	// RateLimit configuration for the two fixed-window limiters
	RateLimit struct {
		CreateLimit         int `mapstructure:"create_limit"`          // Profile creations allowed per window and IP
		CreateWindowMinutes int `mapstructure:"create_window_minutes"` // Creation window length in minutes
		ReadLimit           int `mapstructure:"read_limit"`            // Profile reads allowed per window and IP
		ReadWindowSeconds   int `mapstructure:"read_window_seconds"`   // Read window length in seconds
	} `mapstructure:"ratelimit"`
}

// LoadConfig loads the application configuration using Viper.
// It supports environment variable overrides and YAML configuration files.
// Returns a populated Config struct or an error if configuration loading fails.
func LoadConfig() (*Config, error) {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	// e.g., "server.port" becomes "SERVER_PORT"
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Set default values for all configuration options
	// These will be used if no config file is found or if specific keys are missing
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.name", "linkbio.db")
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("monitor.interval_minutes", 5)
	viper.SetDefault("ratelimit.create_limit", 10)
	viper.SetDefault("ratelimit.create_window_minutes", 60)
	viper.SetDefault("ratelimit.read_limit", 100)
	viper.SetDefault("ratelimit.read_window_seconds", 60)

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// This is not a fatal error - we'll use default values
			log.Println("Config file not found, using default values")
		} else {
			// Any other error (permissions, malformed YAML, etc.) is fatal
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the loaded configuration into our Config structure
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	log.Printf("Configuration loaded: Server Port=%d, DB Name=%s, Analytics Buffer=%d, Monitor Interval=%dmin",
		cfg.Server.Port, cfg.Database.Name, cfg.Analytics.BufferSize, cfg.Monitor.IntervalMinutes)

	return &cfg, nil
}
