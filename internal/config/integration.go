package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"astro-themes/internal/domain"
)

// LoadIntegration reads the integration options from a YAML file. A missing
// file yields the defaults. Unknown keys are rejected.
func LoadIntegration(path string) (domain.IntegrationOptions, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return domain.IntegrationOptions{}, nil
		}
		return domain.IntegrationOptions{}, fmt.Errorf("read %s: %w", path, err)
	}
	opts, err := ParseIntegration(data)
	if err != nil {
		return domain.IntegrationOptions{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return opts, nil
}

// ParseIntegration decodes integration options from YAML.
func ParseIntegration(data []byte) (domain.IntegrationOptions, error) {
	var opts domain.IntegrationOptions
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return domain.IntegrationOptions{}, err
	}
	return opts, nil
}

// SaveIntegration writes opts as YAML.
func SaveIntegration(path string, opts domain.IntegrationOptions) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshal integration config: %w", err)
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // config file is not secret
}
