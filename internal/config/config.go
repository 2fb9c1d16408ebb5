// Package config resolves runtime settings for the server and CLI.
// Precedence, lowest to highest: built-in defaults, restruct.yaml next to
// the project root, environment variables (a .env file is loaded first if
// present), then explicit flag values applied by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the optional per-project settings file.
const FileName = "restruct.yaml"

// Config is the resolved runtime configuration.
type Config struct {
	// Port is the listen address of the operation server, ":8080" style.
	Port string `yaml:"port"`
	// Root is the project directory the file store is locked to.
	Root string `yaml:"root"`
	// InjectFields enables the parameter-injection policy for private
	// field reads.
	InjectFields bool `yaml:"inject_fields"`
	// Resolver picks the identifier-classification strategy: "heuristic"
	// or "table".
	Resolver string `yaml:"resolver"`

	// Cache sizing.
	MaxProjects int           `yaml:"max_projects"`
	MaxParsed   int           `yaml:"max_parsed"`
	ParseTTL    time.Duration `yaml:"parse_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:         ":8080",
		Root:         ".",
		InjectFields: true,
		Resolver:     "heuristic",
		MaxProjects:  64,
		MaxParsed:    4096,
		ParseTTL:     5 * time.Minute,
	}
}

// Load resolves the configuration from defaults, the optional yaml file and
// the environment. Flag overrides are the caller's business.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if root := strings.TrimSpace(os.Getenv("RESTRUCT_ROOT")); root != "" {
		cfg.Root = root
	}
	if err := cfg.applyFile(filepath.Join(cfg.Root, FileName)); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("RESTRUCT_PORT")); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		c.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("RESTRUCT_ROOT")); v != "" {
		c.Root = v
	}
	if v := strings.TrimSpace(os.Getenv("RESTRUCT_INJECT_FIELDS")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: RESTRUCT_INJECT_FIELDS: %w", err)
		}
		c.InjectFields = b
	}
	if v := strings.TrimSpace(os.Getenv("RESTRUCT_RESOLVER")); v != "" {
		c.Resolver = v
	}
	if v := strings.TrimSpace(os.Getenv("RESTRUCT_MAX_PROJECTS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: RESTRUCT_MAX_PROJECTS: %w", err)
		}
		c.MaxProjects = n
	}
	if v := strings.TrimSpace(os.Getenv("RESTRUCT_MAX_PARSED")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: RESTRUCT_MAX_PARSED: %w", err)
		}
		c.MaxParsed = n
	}
	if v := strings.TrimSpace(os.Getenv("RESTRUCT_PARSE_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: RESTRUCT_PARSE_TTL: %w", err)
		}
		c.ParseTTL = d
	}
	return nil
}

// Validate rejects configurations the composition root cannot act on.
func (c Config) Validate() error {
	switch c.Resolver {
	case "heuristic", "table":
	default:
		return fmt.Errorf("config: unknown resolver %q", c.Resolver)
	}
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("config: root is empty")
	}
	return nil
}
