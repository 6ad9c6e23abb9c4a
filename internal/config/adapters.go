package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Codec parses and renders configuration documents. The default is YAML.
type Codec interface {
	Parse(data []byte) (map[string]any, error)
	Render(doc map[string]any) ([]byte, error)
}

// FileSystem abstracts the file operations the loader performs.
type FileSystem interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// Environment abstracts read access to the process environment.
type Environment interface {
	Lookup(name string) (string, bool)
}

type yamlCodec struct{}

func (yamlCodec) Parse(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return doc, nil
}

func (yamlCodec) Render(doc map[string]any) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render YAML: %w", err)
	}
	return data, nil
}

type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (osFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (osFileSystem) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

type osEnvironment struct{}

func (osEnvironment) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}
