package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"campus-sports-cli/api"
	"campus-sports-cli/storage"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix             = "CAMPUS"
	defaultRequestTimeout = 15 * time.Second
)

// Config is layered: defaults, then <config dir>/config.json, then CAMPUS_*
// environment variables (a local .env file is read first).
type Config struct {
	APIBaseURL     string `json:"api_base_url" envconfig:"API_URL"`
	RequestTimeout string `json:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	DefaultSport   string `json:"default_sport" envconfig:"DEFAULT_SPORT"`
	CacheURL       string `json:"cache_url" envconfig:"CACHE_URL"`
	ViewTTL        string `json:"view_ttl" envconfig:"VIEW_TTL"`
	ConfigDir      string `json:"-" envconfig:"CONFIG_DIR"`
	Verbose        bool   `json:"verbose" envconfig:"VERBOSE"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var env Config
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	dir := env.ConfigDir
	if dir == "" {
		defaultDir, err := storage.DefaultConfigDir()
		if err != nil {
			return Config{}, err
		}
		dir = defaultDir
	}

	cfg, err := loadFile(storage.ConfigPath(dir))
	if err != nil {
		return Config{}, err
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	cfg.ConfigDir = dir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if info.IsDir() {
		return Config{}, fmt.Errorf("config path is a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var conf Config
	if err := json.NewDecoder(file).Decode(&conf); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return conf, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		c.APIBaseURL = api.DefaultBaseURL
	}
	if strings.TrimSpace(c.RequestTimeout) == "" {
		c.RequestTimeout = defaultRequestTimeout.String()
	}
	if strings.TrimSpace(c.ViewTTL) == "" {
		c.ViewTTL = storage.DefaultViewTTL.String()
	}
}

func (c Config) Validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.ViewCacheTTL(); err != nil {
		return err
	}
	if c.DefaultSport != "" {
		if _, ok := api.ParseSport(c.DefaultSport); !ok {
			return fmt.Errorf("default_sport %q is not a known sport", c.DefaultSport)
		}
	}
	if c.CacheURL != "" && !strings.HasPrefix(c.CacheURL, "redis://") && !strings.HasPrefix(c.CacheURL, "rediss://") {
		return fmt.Errorf("cache_url must be a redis:// or rediss:// url")
	}
	return nil
}

func (c Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid request_timeout %q: %w", c.RequestTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("request_timeout must be positive")
	}
	return d, nil
}

// ViewCacheTTL is how long a cached booking list is served.
func (c Config) ViewCacheTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.ViewTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid view_ttl %q: %w", c.ViewTTL, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("view_ttl must be positive")
	}
	return d, nil
}

func (c Config) StatePath() string {
	return storage.StatePath(c.ConfigDir)
}
