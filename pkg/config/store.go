package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source is one layer of configuration. Later layers override earlier ones.
type Source interface {
	Name() string
	Load() (map[string]string, error)
}

// YAMLFile reads a YAML mapping. Nested keys are joined with "_", so
// browser: {headless: true} becomes BROWSER_HEADLESS. A missing file is empty.
type YAMLFile string

func (f YAMLFile) Name() string { return "yaml:" + string(f) }

func (f YAMLFile) Load() (map[string]string, error) {
	data, err := os.ReadFile(string(f))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f, err)
	}

	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for k, v := range node {
		key := normalize(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case nil:
			// null leaves the key unset
		case []interface{}:
			parts := make([]string, len(val))
			for i, item := range val {
				parts[i] = fmt.Sprint(item)
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// DotEnv reads a .env file. A missing file is empty.
type DotEnv string

func (f DotEnv) Name() string { return "dotenv:" + string(f) }

func (f DotEnv) Load() (map[string]string, error) {
	values, err := godotenv.Read(string(f))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f, err)
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[normalize(k)] = v
	}
	return out, nil
}

// Environ reads KEY=VALUE pairs, normally os.Environ.
type Environ func() []string

func (Environ) Name() string { return "env" }

func (e Environ) Load() (map[string]string, error) {
	out := make(map[string]string)
	for _, kv := range e() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		out[normalize(k)] = v
	}
	return out, nil
}

// Map is a fixed set of values, used for defaults and tests.
type Map map[string]string

func (Map) Name() string { return "map" }

func (m Map) Load() (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[normalize(k)] = v
	}
	return out, nil
}

func normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
