package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/confstack/confstack/internal/schema"
	"github.com/confstack/confstack/internal/store"
)

// ErrFileUnreadable indicates a configuration file exists but could not be read.
var ErrFileUnreadable = errors.New("configuration file is unreadable")

// Source identifies one configuration layer: either a YAML file on disk or an
// in-memory mapping. Construct with File or Values.
type Source struct {
	path   string
	values map[string]any
}

// File declares a configuration file source.
func File(path string) Source {
	return Source{path: path}
}

// Values declares an in-memory mapping source.
func Values(mapping map[string]any) Source {
	return Source{values: mapping}
}

// Options describes how to assemble a merged configuration.
// Precedence, strongest first: earlier Sources > later Sources > Defaults,
// with environment variables overriding all of them.
type Options struct {
	// Sources holds the configuration layers, highest precedence first.
	Sources []Source
	// Defaults defines the complete configuration shape. Only leaf paths
	// present here are eligible for environment override.
	Defaults map[string]any
	// Schema optionally validates every parsed file document.
	Schema schema.Validator
	// EnvPrefix is prepended to derived environment variable names.
	EnvPrefix string
	// Logger receives debug records for every applied override. Optional.
	Logger *zap.Logger

	// Adapter overrides, primarily for tests. Nil selects the OS-backed
	// YAML defaults.
	Codec       Codec
	FileSystem  FileSystem
	Environment Environment
}

// Config is the merged, authoritative view over defaults, files, and
// environment overrides. It is owned by a single caller after Load; no
// internal locking is performed.
type Config struct {
	store     store.Store
	envPrefix string
	codec     Codec
	fs        FileSystem
}

// Load builds the merged configuration. Defaults merge first, then each
// source in reverse listed order so the first listed source wins, then
// environment variables derived from the flattened default paths, which win
// over everything. Any file read, parse, schema, or overlay failure aborts
// the load; a half-built Config is never returned.
func Load(opts Options) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	codec := opts.Codec
	if codec == nil {
		codec = yamlCodec{}
	}
	fs := opts.FileSystem
	if fs == nil {
		fs = osFileSystem{}
	}
	env := opts.Environment
	if env == nil {
		env = osEnvironment{}
	}

	merged := store.New()
	merged.Update(opts.Defaults)

	// Walk the sources backward so each merge lands on top of the previous
	// one and the first listed source ends up with final precedence.
	for i := len(opts.Sources) - 1; i >= 0; i-- {
		source := opts.Sources[i]

		if source.values != nil {
			logger.Debug("merging in-memory source", zap.Int("position", i))
			merged.Update(source.values)
			continue
		}

		if source.path == "" || !fs.Exists(source.path) {
			logger.Debug("skipping missing config file", zap.String("path", source.path))
			continue
		}

		doc, err := loadFile(fs, codec, opts.Schema, source.path)
		if err != nil {
			return nil, err
		}
		logger.Debug("merging config file", zap.String("path", source.path))
		merged.Update(doc)
	}

	for _, leaf := range store.Store(opts.Defaults).Flatten() {
		name := envVarName(opts.EnvPrefix, leaf.Path)
		value, ok := env.Lookup(name)
		if !ok {
			continue
		}
		logger.Debug("overriding from environment",
			zap.String("var", name),
			zap.String("path", strings.Join(leaf.Path, ".")),
		)
		if err := merged.SetPath(leaf.Path, value); err != nil {
			return nil, fmt.Errorf("apply %s: %w", name, err)
		}
	}

	return &Config{
		store:     merged,
		envPrefix: opts.EnvPrefix,
		codec:     codec,
		fs:        fs,
	}, nil
}

// loadFile reads, parses, and optionally validates a single configuration file.
func loadFile(fs FileSystem, codec Codec, validator schema.Validator, path string) (map[string]any, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, errors.Join(ErrFileUnreadable, err))
	}

	doc, err := codec.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if validator != nil {
		if err := validator.Validate(doc); err != nil {
			return nil, fmt.Errorf("validate %s: %w", path, err)
		}
	}

	return doc, nil
}

// Get returns the value under a single top-level key.
func (c *Config) Get(key string) (any, error) {
	return c.store.Get(key)
}

// GetPath returns the value at a nested path.
func (c *Config) GetPath(path []string) (any, error) {
	return c.store.GetPath(path)
}

// Set assigns a top-level key directly in the merged store.
func (c *Config) Set(key string, value any) {
	c.store.Set(key, value)
}

// SetPath assigns a value at a nested path; intermediate containers must
// already exist.
func (c *Config) SetPath(path []string, value any) error {
	return c.store.SetPath(path, value)
}

// EnvVarName returns the environment variable consulted for path, e.g.
// ["db","host"] with prefix "app" derives "APP_DB_HOST".
func (c *Config) EnvVarName(path []string) string {
	return envVarName(c.envPrefix, path)
}

// String renders the merged store for diagnostics.
func (c *Config) String() string {
	return c.store.String()
}

// envVarName joins the upper-cased prefix and path segments with underscores.
// An empty prefix contributes no segment. Paths whose segments themselves
// contain underscores can collide; known limitation.
func envVarName(prefix string, path []string) string {
	parts := make([]string, 0, len(path)+1)
	if prefix != "" {
		parts = append(parts, strings.ToUpper(prefix))
	}
	for _, segment := range path {
		parts = append(parts, strings.ToUpper(segment))
	}
	return strings.Join(parts, "_")
}
