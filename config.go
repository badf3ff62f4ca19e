package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Addr            string `yaml:"addr"`
	DBDriver        string `yaml:"db_driver"`
	DBDSN           string `yaml:"db_dsn"`
	SessionSecret   string `yaml:"session_secret"`
	SessionBlockKey string `yaml:"session_block_key"`
	BcryptCost      int    `yaml:"bcrypt_cost"`
	SecureCookies   bool   `yaml:"secure_cookies"`
	Debug           bool   `yaml:"debug"`
	TemplatesDir    string `yaml:"templates_dir"`
	StaticDir       string `yaml:"static_dir"`
}

func defaultConfig() *Config {
	return &Config{
		Addr:         ":5002",
		DBDriver:     "sqlite",
		DBDSN:        "posts.db",
		BcryptCost:   12,
		TemplatesDir: "templates",
		StaticDir:    "static",
	}
}

// loadConfig layers defaults, the optional YAML file, and the environment
// (including a .env file), in that order. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"BLOG_ADDR":              &c.Addr,
		"BLOG_DB_DRIVER":         &c.DBDriver,
		"BLOG_DB_DSN":            &c.DBDSN,
		"BLOG_SESSION_SECRET":    &c.SessionSecret,
		"BLOG_SESSION_BLOCK_KEY": &c.SessionBlockKey,
		"BLOG_TEMPLATES":         &c.TemplatesDir,
		"BLOG_STATIC":            &c.StaticDir,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"SECURE_COOKIES": &c.SecureCookies,
		"BLOG_DEBUG":     &c.Debug,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", key, err)
			}
			*dst = b
		}
	}

	if v := os.Getenv("BLOG_BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing BLOG_BCRYPT_COST: %w", err)
		}
		c.BcryptCost = cost
	}
	return nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db_driver must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("db_dsn is required")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	return nil
}
