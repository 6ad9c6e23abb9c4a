package application

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/confstack/confstack/internal/config"
	"github.com/confstack/confstack/internal/schema"
)

// App encapsulates a loaded configuration and the writer command output goes to.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

// Options describes how to assemble the merged configuration for a run.
type Options struct {
	// ConfigFiles are merged highest precedence first.
	ConfigFiles []string
	// DefaultsFile is the YAML file defining default values and the
	// configurable shape. Required.
	DefaultsFile string
	// SchemaFile optionally names a YAML file of CEL validation rules.
	SchemaFile string
	// EnvPrefix is prepended to derived environment variable names.
	EnvPrefix string
}

// New reads the defaults and schema files and loads the merged configuration.
func New(opts Options, logger *zap.Logger, out io.Writer) (*App, error) {
	defaults, err := readDefaults(opts.DefaultsFile)
	if err != nil {
		return nil, err
	}

	var validator schema.Validator
	if opts.SchemaFile != "" {
		validator, err = readSchema(opts.SchemaFile)
		if err != nil {
			return nil, err
		}
	}

	sources := make([]config.Source, 0, len(opts.ConfigFiles))
	for _, path := range opts.ConfigFiles {
		sources = append(sources, config.File(path))
	}

	cfg, err := config.Load(config.Options{
		Sources:   sources,
		Defaults:  defaults,
		Schema:    validator,
		EnvPrefix: opts.EnvPrefix,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	return &App{cfg: cfg, logger: logger, out: out}, nil
}

// Config exposes the merged configuration, primarily for tests.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Render writes the merged configuration as YAML to outPath, or to the
// application writer when outPath is empty.
func (a *App) Render(outPath string) error {
	if outPath != "" {
		a.logger.Debug("writing merged configuration", zap.String("path", outPath))
		return a.cfg.WriteYAML(outPath)
	}

	text, err := a.cfg.AsYAML()
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.out, text)
	return err
}

// EnvFile writes the sourcable env-file script to outPath, or to the
// application writer when outPath is empty.
func (a *App) EnvFile(outPath string) error {
	if outPath != "" {
		a.logger.Debug("writing env file", zap.String("path", outPath))
		return a.cfg.WriteEnvFile(outPath)
	}

	_, err := io.WriteString(a.out, a.cfg.AsEnvFile())
	return err
}

// Get looks up a dot-separated path and prints the value. Mappings render as
// YAML, leaves as their plain representation.
func (a *App) Get(path string) error {
	value, err := a.cfg.GetPath(strings.Split(path, "."))
	if err != nil {
		return err
	}

	if mapping, ok := value.(map[string]any); ok {
		text, err := yaml.Marshal(mapping)
		if err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}
		_, err = a.out.Write(text)
		return err
	}

	_, err = fmt.Fprintln(a.out, value)
	return err
}

func readDefaults(path string) (map[string]any, error) {
	if path == "" {
		return nil, fmt.Errorf("defaults file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defaults %s: %w", path, err)
	}
	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("parse defaults %s: %w", path, err)
	}
	return defaults, nil
}

func readSchema(path string) (schema.Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	rules, err := schema.ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	validator, err := schema.NewCELValidator(rules...)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return validator, nil
}
