package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// UnmatchedTomlKeysError is returned when ErrorOnUnmatchedKeys is set and a
// toml file has keys with no matching field.
type UnmatchedTomlKeysError struct {
	Keys []toml.Key
}

func (e *UnmatchedTomlKeysError) Error() string {
	return fmt.Sprintf("keys in the config file do not match any field: %v", e.Keys)
}

// envFile turns config.yml into config.<env>.yml.
func envFile(file, env string) string {
	ext := filepath.Ext(file)
	if ext == "" {
		return file + "." + env
	}
	return strings.TrimSuffix(file, ext) + "." + env + ext
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// configurationFiles resolves the files to read, later ones overriding
// earlier ones. Each file is followed by its environment variant; the
// example variant stands in when neither exists.
func (c *Config) configurationFiles(files ...string) []string {
	env := c.GetEnvironment()
	var found []string
	for _, file := range files {
		before := len(found)
		if isFile(file) {
			found = append(found, file)
		}
		if f := envFile(file, env); isFile(f) {
			found = append(found, f)
		}
		if len(found) > before {
			continue
		}
		if example := envFile(file, "example"); isFile(example) {
			c.Logger.Info("using example configuration", zap.String("file", example))
			found = append(found, example)
			continue
		}
		c.Logger.Debug("configuration file not found", zap.String("file", file))
	}
	return found
}

func processFile(cfg interface{}, file string, strict bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return unmarshalYAML(data, cfg, strict)
	case ".toml":
		return unmarshalToml(data, cfg, strict)
	case ".json":
		return unmarshalJSON(data, cfg, strict)
	}

	var unmatched *UnmatchedTomlKeysError
	if err := unmarshalToml(data, cfg, strict); err == nil {
		return nil
	} else if errors.As(err, &unmatched) {
		return err
	}
	if err := unmarshalJSON(data, cfg, strict); err == nil {
		return nil
	} else if strings.Contains(err.Error(), "json: unknown field") {
		return err
	}
	if err := unmarshalYAML(data, cfg, strict); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func unmarshalYAML(data []byte, cfg interface{}, strict bool) error {
	if strict {
		return yaml.UnmarshalStrict(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func unmarshalToml(data []byte, cfg interface{}, strict bool) error {
	meta, err := toml.Decode(string(data), cfg)
	if err == nil && strict && len(meta.Undecoded()) > 0 {
		return &UnmatchedTomlKeysError{Keys: meta.Undecoded()}
	}
	return err
}

func unmarshalJSON(data []byte, cfg interface{}, strict bool) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}
