package config

import (
	"fmt"
	"os"

	"github.com/brogergvhs/noveld/internal/util"

	"gopkg.in/yaml.v3"
)

const (
	defaultDataDir  = "data"
	defaultOutput   = "."
	defaultWorkers  = 10
	defaultMaxPages = 40
	defaultAttempts = 3
)

type Config struct {
	DataDir  string `yaml:"data_dir"`
	Output   string `yaml:"output"`
	Workers  int    `yaml:"workers"`
	MaxPages int    `yaml:"max_pages"`
	Attempts int    `yaml:"attempts"`
	Headless bool   `yaml:"headless"`
	Debug    bool   `yaml:"debug"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`
}

// Options are command line overrides. Zero values leave the profile alone.
type Options struct {
	IgnoreConfig bool
	Debug        bool
	DataDir      string
	Output       string
	Workers      int
	MaxPages     int
	Attempts     int
	Headful      bool
	Cookie       string
	CookieFile   string
	UserAgent    string
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:    defaultDataDir,
		Output:     defaultOutput,
		Workers:    defaultWorkers,
		MaxPages:   defaultMaxPages,
		Attempts:   defaultAttempts,
		Headless:   true,
		Debug:      false,
		Cookie:     "",
		CookieFile: "",
		UserAgent:  "",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return util.WriteFileAtomic(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// absent keys keep their defaults
	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `noveld config init` to create an actual config\n", nil
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
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.MaxPages != 0 {
		c.MaxPages = o.MaxPages
	}
	if o.Attempts != 0 {
		c.Attempts = o.Attempts
	}
	if o.Headful {
		c.Headless = false
	}
	if o.Debug {
		c.Debug = true
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
}

func normalizeDefaults(c *Config) {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.Output == "" {
		c.Output = defaultOutput
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.Attempts <= 0 {
		c.Attempts = defaultAttempts
	}
}

func (c *Config) Print() {
	fmt.Printf(" -data_dir: %s\n", c.DataDir)
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -workers: %d\n", c.Workers)
	fmt.Printf(" -max_pages: %d\n", c.MaxPages)
	fmt.Printf(" -attempts: %d\n", c.Attempts)
	fmt.Printf(" -headless: %t\n", c.Headless)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
}
