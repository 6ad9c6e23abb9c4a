package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// AsYAML serializes the merged store to YAML text. Parsing the output and
// merging it into an empty store with the same defaults reproduces an
// equivalent store.
func (c *Config) AsYAML() (string, error) {
	data, err := c.codec.Render(c.snapshot())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// AsEnvFile renders the merged store as a sourcable shell script, one
// `export NAME=value` line per flattened leaf. Only string leaves are
// emitted; shell export syntax is undefined for anything else.
func (c *Config) AsEnvFile() string {
	var script strings.Builder
	for _, leaf := range c.store.Flatten() {
		value, ok := leaf.Value.(string)
		if !ok {
			continue
		}
		fmt.Fprintf(&script, "export %s=%s\n", envVarName(c.envPrefix, leaf.Path), value)
	}
	return script.String()
}

// WriteYAML writes the AsYAML output to path through the filesystem adapter.
func (c *Config) WriteYAML(path string) error {
	text, err := c.AsYAML()
	if err != nil {
		return err
	}
	if err := c.fs.WriteFile(path, []byte(text)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteEnvFile writes the AsEnvFile output to path through the filesystem
// adapter.
func (c *Config) WriteEnvFile(path string) error {
	if err := c.fs.WriteFile(path, []byte(c.AsEnvFile())); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Unmarshal decodes the merged store into target, which must be a pointer to
// a struct or map. Field names map via `mapstructure` tags. Decoding is
// weakly typed so string values injected from the environment convert into
// numeric and boolean fields.
func (c *Config) Unmarshal(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(c.snapshot()); err != nil {
		return fmt.Errorf("decode configuration: %w", err)
	}
	return nil
}

// snapshot exposes the store as a plain mapping for codecs and decoders.
func (c *Config) snapshot() map[string]any {
	return map[string]any(c.store)
}
