// Package config fills a settings struct from, in order of precedence:
// `default` tags, configuration files, .env files and the process
// environment. Fields tagged `required:"true"` must end up non-zero.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	*Settings
	loaded []string
}

type Settings struct {
	Environment string
	// ENVPrefix prefixes environment names derived from field paths,
	// e.g. RASP_SERVER_PORT. Defaults to CONFIG; "-" disables it.
	ENVPrefix string
	// EnvFiles are dotenv files read before the environment is consulted.
	// Variables that are already set win.
	EnvFiles             []string
	ErrorOnUnmatchedKeys bool
	Logger               *zap.Logger
}

// New initialize a Config
func New(s *Settings) *Config {
	if s == nil {
		s = &Settings{}
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return &Config{Settings: s}
}

var testRegexp = regexp.MustCompile(`_test|(\.test$)`)

// GetEnvironment returns the configured environment, CONFIG_ENV, "test"
// under go test, or "development".
func (c *Config) GetEnvironment() string {
	if c.Environment != "" {
		return c.Environment
	}
	if env := os.Getenv("CONFIG_ENV"); env != "" {
		return env
	}
	if testRegexp.MatchString(os.Args[0]) {
		return "test"
	}
	return "development"
}

// Files lists the configuration files used by the last Load.
func (c *Config) Files() []string {
	return c.loaded
}

// Load fills cfg, a pointer to a struct.
func (c *Config) Load(cfg interface{}, files ...string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config %T should be a pointer to a struct", cfg)
	}

	if err := c.loadEnvFiles(); err != nil {
		return err
	}
	if err := processDefaults(cfg); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}

	c.loaded = c.configurationFiles(files...)
	for _, file := range c.loaded {
		c.Logger.Debug("loading configuration file", zap.String("file", file))
		if err := processFile(cfg, file, c.ErrorOnUnmatchedKeys); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	if prefix := c.envPrefix(); prefix != "-" {
		return c.processTags(cfg, prefix)
	}
	return c.processTags(cfg)
}

func (c *Config) envPrefix() string {
	if c.ENVPrefix != "" {
		return c.ENVPrefix
	}
	if prefix := os.Getenv("CONFIG_ENV_PREFIX"); prefix != "" {
		return prefix
	}
	return "CONFIG"
}

func (c *Config) loadEnvFiles() error {
	for _, file := range c.EnvFiles {
		err := godotenv.Load(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
		c.Logger.Debug("loaded env file", zap.String("file", file))
	}
	return nil
}

// Load fills cfg with a default Config.
func Load(cfg interface{}, files ...string) (*Config, error) {
	c := New(nil)
	if err := c.Load(cfg, files...); err != nil {
		return nil, err
	}
	return c, nil
}
