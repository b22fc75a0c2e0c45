// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON config
// file, and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"server_address" env:"SERVER_ADDRESS"`

	// BackendURL is the base address of the external REST backend.
	BackendURL string `json:"backend_url" env:"BACKEND_URL"`

	// ProductImagePath is the backend path prefix serving product image
	// binaries, relative to BackendURL.
	ProductImagePath string `json:"product_image_path" env:"PRODUCT_IMAGE_PATH"`

	// UserImagePath is the backend path prefix serving user avatar binaries.
	UserImagePath string `json:"user_image_path" env:"USER_IMAGE_PATH"`

	// DatabaseDSN holds the connection string for the session store.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// LogLevel sets the zap logging level.
	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// Config is the path to the config file.
	Config string `json:"-" env:"CONFIG"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.BackendURL, "b", "http://localhost:5000/api", "backend base URL")
	flag.StringVar(&options.ProductImagePath, "pi", "/images/products", "product image path prefix")
	flag.StringVar(&options.UserImagePath, "ui", "/images/users", "user image path prefix")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, config file, and environment
// variables (in that order of precedence, lowest first) and returns a
// pointer to the Options struct containing the resulting values.
func Parse() *Options {
	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	// Environment variables win over flags and the config file.
	if err := env.Parse(options); err != nil {
		log.Fatalf("error while parsing environment: %v", err)
	}

	return options
}
