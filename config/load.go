package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
)

const (
	// EnvPrefix prefixes environment overrides: pipeline.top_k is read
	// from RDFMAP_PIPELINE_TOP_K.
	EnvPrefix = "RDFMAP"

	maxConfigSize = 10 << 20 // 10MB
	maxPathLen    = 4096
)

// Load reads a YAML or JSON file over the defaults, applies environment
// overrides and validates the result. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if err := setDefaults(v, cfg); err != nil {
		return nil, errors.WrapFatal(err, "Config", "Load", "register defaults")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if err := checkConfigFile(path); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrConfigValidation, err), "Config", "Load", "check config file")
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err), "Config", "Load", "read config file")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err), "Config", "Load", "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every leaf of cfg so AutomaticEnv can override
// keys the file does not mention.
func setDefaults(v *viper.Viper, cfg Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return err
	}
	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, val := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			switch child := val.(type) {
			case nil:
			case map[string]any:
				walk(key, child)
			default:
				v.SetDefault(key, child)
			}
		}
	}
	walk("", tree)
	return nil
}

// checkConfigFile rejects paths that are not small regular files.
func checkConfigFile(path string) error {
	if len(path) > maxPathLen {
		return fmt.Errorf("path too long: %d > %d", len(path), maxPathLen)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return fmt.Errorf("unsupported config file type: %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	if info.Size() > maxConfigSize {
		return fmt.Errorf("config file too large: %d bytes > %d", info.Size(), maxConfigSize)
	}
	return nil
}
