package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SourcesFile   string `yaml:"sources_file"`
	DefaultSource string `yaml:"default_source"`
	Reverse       bool   `yaml:"reverse"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	Timeout          time.Duration `yaml:"timeout"`
	Retries          int           `yaml:"retries"`
	RatePerSecond    float64       `yaml:"rate_per_second"`
	FanoutLimit      int           `yaml:"fanout_limit"`
	CloudflareBypass bool          `yaml:"cloudflare_bypass"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`

	Debug   bool   `yaml:"debug"`
	LogFile string `yaml:"log_file"`
}

type Options struct {
	IgnoreConfig  bool
	Debug         bool
	SourcesFile   string
	DefaultSource string
	DBDriver      string
	DBDSN         string
	FanoutLimit   int
	Cookie        string
	CookieFile    string
	UserAgent     string
	LogFile       string
}

func DefaultConfig() *Config {
	return &Config{
		DBDriver:    "sqlite3",
		Timeout:     30 * time.Second,
		Retries:     3,
		FanoutLimit: 0,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadFile reads a config file outside the profiles directory. Missing keys
// keep their defaults.
func LoadFile(path string) (*Config, error) {
	return loadYAML(path)
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if errors.Is(err, ErrNoConfig) {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `mangatoc config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.SourcesFile != "" {
		c.SourcesFile = o.SourcesFile
	}
	if o.DefaultSource != "" {
		c.DefaultSource = o.DefaultSource
	}
	if o.DBDriver != "" {
		c.DBDriver = o.DBDriver
	}
	if o.DBDSN != "" {
		c.DBDSN = o.DBDSN
	}
	if o.FanoutLimit != 0 {
		c.FanoutLimit = o.FanoutLimit
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
}

func normalizeDefaults(c *Config) {
	if c.SourcesFile == "" {
		c.SourcesFile = filepath.Join(ConfigRoot(), "sources.yaml")
	}
	if c.DBDriver == "" {
		c.DBDriver = "sqlite3"
	}
	if c.DBDSN == "" && c.DBDriver == "sqlite3" {
		c.DBDSN = filepath.Join(DataRoot(), "mangatoc.db")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.FanoutLimit < 0 {
		c.FanoutLimit = 0
	}
}

func (c *Config) Print() {
	fmt.Printf(" -sources_file: %s\n", c.SourcesFile)
	if c.DefaultSource != "" {
		fmt.Printf(" -default_source: %s\n", c.DefaultSource)
	}
	if c.Reverse {
		fmt.Printf(" -reverse: %t\n", c.Reverse)
	}
	fmt.Printf(" -db_driver: %s\n", c.DBDriver)
	if c.DBDSN != "" && c.DBDriver == "sqlite3" {
		fmt.Printf(" -db_dsn: %s\n", c.DBDSN)
	}
	fmt.Printf(" -timeout: %s\n", c.Timeout)
	fmt.Printf(" -retries: %d\n", c.Retries)
	if c.RatePerSecond > 0 {
		fmt.Printf(" -rate_per_second: %.2f\n", c.RatePerSecond)
	}
	if c.FanoutLimit > 0 {
		fmt.Printf(" -fanout_limit: %d\n", c.FanoutLimit)
	}
	if c.CloudflareBypass {
		fmt.Printf(" -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.LogFile != "" {
		fmt.Printf(" -log_file: %s\n", c.LogFile)
	}
}
