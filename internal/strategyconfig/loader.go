package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a strategy YAML file, rejecting unknown fields so typos fail
// loudly instead of silently falling back to defaults. Returns the parsed
// config together with the raw bytes for audit storage.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read strategy file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, nil, fmt.Errorf("parse strategy file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, data, err
	}

	return &cfg, data, nil
}

// LoadOrDefault loads the file when it exists, otherwise returns the
// built-in strategy. Any other read or validation error is still fatal.
func LoadOrDefault(path string) (*Config, []byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil, nil
	}
	return Load(path)
}

// Hash returns a reproducible SHA256 of the config via canonical JSON.
// Structs, not maps, so field order is deterministic.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
