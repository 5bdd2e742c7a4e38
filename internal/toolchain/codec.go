package toolchain

import (
	"encoding/json"
	"fmt"
)

// Encode serializes the configuration to JSON, secrets included.
// Use Redacted first for anything leaving the process.
func Encode(c *ToolchainConfig) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// Decode parses JSON produced by Encode
func Decode(data []byte) (*ToolchainConfig, error) {
	var c ToolchainConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &c, nil
}

// Record converts the configuration to a plain nested record
func (c *ToolchainConfig) Record() (map[string]any, error) {
	data, err := Encode(c)
	if err != nil {
		return nil, err
	}

	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to build record: %w", err)
	}
	return rec, nil
}

// FromRecord is the inverse of Record
func FromRecord(rec map[string]any) (*ToolchainConfig, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return Decode(data)
}
