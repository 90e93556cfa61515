package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/config/v2"
	"github.com/gookit/config/v2/yaml"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

type Storage struct {
	Driver string `config:"driver"`
	Path   string `config:"path"`
}

// Broker configures the optional Pulsar event producer. Publishing is
// disabled while URL is empty.
type Broker struct {
	URL   string `config:"url"`
	Topic string `config:"topic"`
	Name  string `config:"name"`
}

func (b Broker) Enabled() bool {
	return b.URL != ""
}

type Config struct {
	Env             string  `config:"env"`
	Addr            string  `config:"addr"`
	ShutdownTimeout string  `config:"shutdown_timeout"`
	Storage         Storage `config:"storage"`
	Broker          Broker  `config:"broker"`

	gracePeriod time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Env:             EnvDev,
		Addr:            ":8080",
		ShutdownTimeout: "5s",
		Storage: Storage{
			Driver: StorageJSON,
			Path:   "data/todos.json",
		},
		Broker: Broker{
			Topic: "todos",
			Name:  "todo-web",
		},
	}
}

// NewConfig reads the YAML file at path, then an optional sibling
// "<name>.local.yml" override. Values may reference environment variables as
// ${NAME|default}. An empty path yields the defaults.
func NewConfig(path string) (*Config, error) {
	appConfig := DefaultConfig()

	if path != "" {
		c := config.New("todo")
		c.WithOptions(func(opt *config.Options) {
			opt.ParseEnv = true
			opt.DecoderConfig.TagName = "config"
		})
		c.AddDriver(yaml.Driver)

		if err := c.LoadFiles(path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}

		if err := c.LoadExists(localPath(path)); err != nil {
			return nil, fmt.Errorf("load local config: %w", err)
		}

		if err := c.BindStruct("", appConfig); err != nil {
			return nil, fmt.Errorf("bind config: %w", err)
		}
	}

	if err := appConfig.Validate(); err != nil {
		return nil, err
	}

	return appConfig, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %q", c.Env)
	}

	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if c.Broker.Enabled() && c.Broker.Topic == "" {
		return fmt.Errorf("broker topic is required when broker url is set")
	}

	gracePeriod, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	c.gracePeriod = gracePeriod

	return nil
}

// GracePeriod is the parsed shutdown timeout. It is zero until Validate succeeds.
func (c *Config) GracePeriod() time.Duration {
	return c.gracePeriod
}

func localPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}
