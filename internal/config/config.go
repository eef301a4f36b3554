package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIKey          string  `mapstructure:"api_key" yaml:"api_key"`
	OpenAIAPIKey    string  `mapstructure:"openai_api_key" yaml:"openai_api_key"`
	DefaultProvider string  `mapstructure:"default_provider" yaml:"default_provider"`
	DefaultModel    string  `mapstructure:"default_model" yaml:"default_model"`
	BaseURL         string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Temperature     float64 `mapstructure:"temperature" yaml:"temperature"`
	HTTPTimeoutSec  int     `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	// Storage
	DataDir         string `mapstructure:"data_dir" yaml:"data_dir"`
	StoreBackend    string `mapstructure:"store_backend" yaml:"store_backend"`
	SQLitePath      string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	ObjectEndpoint  string `mapstructure:"object_endpoint" yaml:"object_endpoint"`
	ObjectAccessKey string `mapstructure:"object_access_key" yaml:"object_access_key"`
	ObjectSecretKey string `mapstructure:"object_secret_key" yaml:"object_secret_key"`
	ObjectBucket    string `mapstructure:"object_bucket" yaml:"object_bucket"`
	ObjectPrefix    string `mapstructure:"object_prefix" yaml:"object_prefix"`
	ObjectUseSSL    bool   `mapstructure:"object_use_ssl" yaml:"object_use_ssl"`

	// Builder limits
	FreePreviewLimit int `mapstructure:"free_preview_limit" yaml:"free_preview_limit"`

	// Thumbnails
	ThumbnailWidth      int `mapstructure:"thumbnail_width" yaml:"thumbnail_width"`
	ThumbnailHeight     int `mapstructure:"thumbnail_height" yaml:"thumbnail_height"`
	ThumbnailTimeoutSec int `mapstructure:"thumbnail_timeout_sec" yaml:"thumbnail_timeout_sec"`

	// Preview server
	PreviewAddr string `mapstructure:"preview_addr" yaml:"preview_addr"`
}

// HomeDir returns ~/.sitesmith.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sitesmith"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sitesmith/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := HomeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from .env, env, file, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// .env in the working directory; existing env wins
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SITESMITH")
	v.AutomaticEnv()
	_ = v.BindEnv("api_key", "SITESMITH_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("openai_api_key", "SITESMITH_OPENAI_API_KEY", "OPENAI_API_KEY", "VITE_OPENAI_API_KEY")

	// Defaults
	v.SetDefault("api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("default_provider", "openrouter")
	v.SetDefault("default_model", "")
	v.SetDefault("base_url", "")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("data_dir", "")
	v.SetDefault("store_backend", "file")
	v.SetDefault("sqlite_path", "")
	v.SetDefault("object_endpoint", "")
	v.SetDefault("object_access_key", "")
	v.SetDefault("object_secret_key", "")
	v.SetDefault("object_bucket", "sitesmith")
	v.SetDefault("object_prefix", "")
	v.SetDefault("object_use_ssl", true)
	v.SetDefault("free_preview_limit", 3)
	v.SetDefault("thumbnail_width", 1024)
	v.SetDefault("thumbnail_height", 768)
	v.SetDefault("thumbnail_timeout_sec", 10)
	v.SetDefault("preview_addr", "127.0.0.1:8080")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := HomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DataDir == "" {
		dir, err := HomeDir()
		if err != nil {
			return nil, err
		}
		c.DataDir = filepath.Join(dir, "data")
	}
	return &c, nil
}

// Keys lists every settable key in display order.
var Keys = []string{
	"api_key", "openai_api_key", "default_provider", "default_model", "base_url", "temperature", "http_timeout_sec",
	"data_dir", "store_backend", "sqlite_path",
	"object_endpoint", "object_access_key", "object_secret_key", "object_bucket", "object_prefix", "object_use_ssl",
	"free_preview_limit", "thumbnail_width", "thumbnail_height", "thumbnail_timeout_sec", "preview_addr",
}

// Secret reports whether key holds a credential that should be masked.
func Secret(key string) bool {
	return key == "api_key" || key == "openai_api_key" || key == "object_secret_key" || key == "object_access_key"
}

// Get returns the string form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "api_key":
		return c.APIKey, nil
	case "openai_api_key":
		return c.OpenAIAPIKey, nil
	case "default_provider":
		return c.DefaultProvider, nil
	case "default_model":
		return c.DefaultModel, nil
	case "base_url":
		return c.BaseURL, nil
	case "temperature":
		return strconv.FormatFloat(c.Temperature, 'f', -1, 64), nil
	case "http_timeout_sec":
		return strconv.Itoa(c.HTTPTimeoutSec), nil
	case "data_dir":
		return c.DataDir, nil
	case "store_backend":
		return c.StoreBackend, nil
	case "sqlite_path":
		return c.SQLitePath, nil
	case "object_endpoint":
		return c.ObjectEndpoint, nil
	case "object_access_key":
		return c.ObjectAccessKey, nil
	case "object_secret_key":
		return c.ObjectSecretKey, nil
	case "object_bucket":
		return c.ObjectBucket, nil
	case "object_prefix":
		return c.ObjectPrefix, nil
	case "object_use_ssl":
		return strconv.FormatBool(c.ObjectUseSSL), nil
	case "free_preview_limit":
		return strconv.Itoa(c.FreePreviewLimit), nil
	case "thumbnail_width":
		return strconv.Itoa(c.ThumbnailWidth), nil
	case "thumbnail_height":
		return strconv.Itoa(c.ThumbnailHeight), nil
	case "thumbnail_timeout_sec":
		return strconv.Itoa(c.ThumbnailTimeoutSec), nil
	case "preview_addr":
		return c.PreviewAddr, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val and assigns it to key.
func (c *Global) Set(key, val string) error {
	atoi := func(min int) (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "api_key":
		c.APIKey = val
	case "openai_api_key":
		c.OpenAIAPIKey = val
	case "default_provider":
		switch strings.ToLower(val) {
		case "openrouter", "openai":
			c.DefaultProvider = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid default_provider: %s (use openrouter or openai)", val)
		}
	case "default_model":
		c.DefaultModel = val
	case "base_url":
		c.BaseURL = strings.TrimRight(strings.TrimSpace(val), "/")
	case "temperature":
		f, perr := strconv.ParseFloat(val, 64)
		if perr != nil || f < 0 || f > 2 {
			return fmt.Errorf("invalid float for temperature: %v", val)
		}
		c.Temperature = f
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = atoi(1)
	case "data_dir":
		c.DataDir = val
	case "store_backend":
		switch strings.ToLower(val) {
		case "file", "sqlite", "object":
			c.StoreBackend = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid store_backend: %s (use file, sqlite or object)", val)
		}
	case "sqlite_path":
		c.SQLitePath = val
	case "object_endpoint":
		c.ObjectEndpoint = val
	case "object_access_key":
		c.ObjectAccessKey = val
	case "object_secret_key":
		c.ObjectSecretKey = val
	case "object_bucket":
		c.ObjectBucket = val
	case "object_prefix":
		c.ObjectPrefix = val
	case "object_use_ssl":
		b, perr := strconv.ParseBool(val)
		if perr != nil {
			return fmt.Errorf("invalid bool for object_use_ssl: %v", val)
		}
		c.ObjectUseSSL = b
	case "free_preview_limit":
		c.FreePreviewLimit, err = atoi(0)
	case "thumbnail_width":
		c.ThumbnailWidth, err = atoi(1)
	case "thumbnail_height":
		c.ThumbnailHeight, err = atoi(1)
	case "thumbnail_timeout_sec":
		c.ThumbnailTimeoutSec, err = atoi(1)
	case "preview_addr":
		c.PreviewAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}
