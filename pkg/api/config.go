package api

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Config is a flat key/value mapping loaded from a build config file or
// inherited from a parent scope. A missing file yields a nil Config, which
// behaves like an empty mapping everywhere.
type Config map[string]any

// Has reports whether key is present.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// GetString returns the value for key coerced to a string.
func (c Config) GetString(key string) (string, bool) {
	v, ok := c[key]
	if !ok {
		return "", false
	}
	return cast.ToString(v), true
}

// GetBool returns the value for key coerced to a bool. YAML authors write
// true/false, "yes", or 1; cast accepts all of them.
func (c Config) GetBool(key string) (bool, bool) {
	v, ok := c[key]
	if !ok {
		return false, false
	}
	return cast.ToBool(v), true
}

// LoadConfigFile reads and parses one config file. Tabs are normalized to
// two spaces first so hand-edited YAML with literal tabs still parses; JSON
// files go through the same reader since YAML is a superset.
func LoadConfigFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	normalized := strings.ReplaceAll(string(data), "\t", "  ")

	var cfg Config
	if err := yaml.Unmarshal([]byte(normalized), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filename, err)
	}
	return cfg, nil
}

// DiscoverConfig probes rootPath for a config file scoped to the step's
// type name first, then the generic conventional name, each against every
// recognized extension. It returns the parsed config and the path it came
// from, or (nil, "") when no candidate exists — absence is not an error.
func DiscoverConfig(rootPath, stepName string) (Config, string, error) {
	if rootPath == "" {
		return nil, "", nil
	}

	names := []string{GenericConfigName}
	if stepName != "" {
		names = []string{GenericConfigName + "." + stepName, GenericConfigName}
	}

	for _, name := range names {
		for _, ext := range RecognizedExtensions {
			candidate := filepath.Join(rootPath, name+"."+ext)
			if st, err := os.Stat(candidate); err != nil || st.IsDir() {
				continue
			}
			slog.Debug("found local config", "path", candidate)
			cfg, err := LoadConfigFile(candidate)
			if err != nil {
				return nil, candidate, err
			}
			return cfg, candidate, nil
		}
	}

	slog.Debug("no local config found", "root", rootPath, "step", stepName)
	return nil, "", nil
}

// WriteConfigFile serializes cfg to the generic conventional location under
// rootPath and returns the written path.
func WriteConfigFile(rootPath string, cfg Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("serializing config: %w", err)
	}

	target := filepath.Join(rootPath, GenericConfigName+"."+RecognizedExtensions[0])
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return target, nil
}
