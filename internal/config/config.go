// Package config provides functionality for managing configuration options
// for the client using a YAML (or JSON) file and environment variables.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/atinyakov/animaltrack/internal/client/kv"
)

// Options holds the configuration values for the client.
type Options struct {
	// APIURL is the base URL of the remote animal API.
	APIURL string `yaml:"api_url"`

	// Timeout bounds each remote call.
	Timeout time.Duration `yaml:"timeout"`

	// CAFile, CertFile and KeyFile configure TLS towards the API.
	CAFile   string `yaml:"ca_file"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// Storage selects where the session and offline list are kept.
	Storage Storage `yaml:"storage"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Storage configures the local key-value backend.
type Storage struct {
	// Driver is file, sqlite, postgres or memory.
	Driver string `yaml:"driver"`
	// Path is the file used by the file and sqlite drivers.
	Path string `yaml:"path"`
	// DSN is the connection string for postgres.
	DSN string `yaml:"dsn"`
}

// Target returns the path or DSN handed to kv.Open.
func (s Storage) Target() string {
	if s.Driver == kv.DriverPostgres {
		return s.DSN
	}
	return s.Path
}

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "animaltrack", "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Options {
	dataDir := "."
	if dir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(dir, "animaltrack")
	}
	return &Options{
		APIURL:   "http://localhost:3333",
		Timeout:  10 * time.Second,
		Storage:  Storage{Driver: kv.DriverFile, Path: filepath.Join(dataDir, "storage.json")},
		LogLevel: "warn",
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path means $CONFIG or DefaultPath; a missing file is not an
// error unless the path was given explicitly.
func Load(path string) (*Options, error) {
	options := Default()

	explicit := path != ""
	if configPath := os.Getenv("CONFIG"); !explicit && configPath != "" {
		path = configPath
		explicit = true
	}
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, options); err != nil {
			return nil, fmt.Errorf("error while parsing config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("error while reading config file: %w", err)
	}

	applyEnv(options)
	return options, nil
}

func applyEnv(options *Options) {
	if v := os.Getenv("ANIMALTRACK_API_URL"); v != "" {
		options.APIURL = v
	}
	if v := os.Getenv("ANIMALTRACK_STORAGE"); v != "" {
		options.Storage.Driver = v
	}
	if v := os.Getenv("ANIMALTRACK_STORAGE_PATH"); v != "" {
		options.Storage.Path = v
	}
	if v := os.Getenv("ANIMALTRACK_STORAGE_DSN"); v != "" {
		options.Storage.DSN = v
	}
	if v := os.Getenv("ANIMALTRACK_LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}
}

// Validate checks that the options can be used to start a client.
func (o *Options) Validate() error {
	u, err := url.ParseRequestURI(o.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid api_url %q", o.APIURL)
	}
	if o.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	switch o.Storage.Driver {
	case kv.DriverFile, kv.DriverSQLite:
		if o.Storage.Path == "" {
			return fmt.Errorf("storage driver %s needs a path", o.Storage.Driver)
		}
	case kv.DriverPostgres:
		if o.Storage.DSN == "" {
			return errors.New("storage driver postgres needs a dsn")
		}
	case kv.DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", o.Storage.Driver)
	}
	return nil
}
