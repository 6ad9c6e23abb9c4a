package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/confstack/confstack/internal/application"
	"github.com/confstack/confstack/internal/logging"
)

func main() {
	kingpinApp := kingpin.New("confstack", "Layered configuration loader - merges defaults, YAML files, and environment variables")
	defaultsFile := kingpinApp.Flag("defaults", "YAML file defining default values and the configurable shape").Required().String()
	configFiles := kingpinApp.Flag("config", "YAML configuration file, repeatable; the first listed wins").Strings()
	envPrefix := kingpinApp.Flag("prefix", "Prefix for environment variable overrides").String()
	schemaFile := kingpinApp.Flag("schema", "YAML file with CEL validation rules applied to every config file").String()
	verbose := kingpinApp.Flag("verbose", "Enable debug logging").Short('v').Bool()

	renderCmd := kingpinApp.Command("render", "Print the merged configuration as YAML")
	renderOut := renderCmd.Flag("out", "Write to a file instead of stdout").String()

	envCmd := kingpinApp.Command("env", "Print the merged configuration as a sourcable env-file script")
	envOut := envCmd.Flag("out", "Write to a file instead of stdout").String()

	getCmd := kingpinApp.Command("get", "Print the value at a dot-separated path")
	getPath := getCmd.Arg("path", "Dot-separated path, e.g. db.host").Required().String()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	logger, err := logging.New(*verbose)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(application.Options{
		ConfigFiles:  *configFiles,
		DefaultsFile: *defaultsFile,
		SchemaFile:   *schemaFile,
		EnvPrefix:    *envPrefix,
	}, logger, os.Stdout)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := dispatch(command, app, commandTargets{
		renderCmd: renderCmd.FullCommand(),
		envCmd:    envCmd.FullCommand(),
		getCmd:    getCmd.FullCommand(),
		renderOut: *renderOut,
		envOut:    *envOut,
		getPath:   *getPath,
	}); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

// commandTargets carries the parsed per-command inputs to dispatch.
type commandTargets struct {
	renderCmd string
	envCmd    string
	getCmd    string
	renderOut string
	envOut    string
	getPath   string
}

// dispatch routes the selected kingpin command to the application.
func dispatch(command string, app *application.App, targets commandTargets) error {
	switch command {
	case targets.renderCmd:
		return app.Render(targets.renderOut)
	case targets.envCmd:
		return app.EnvFile(targets.envOut)
	case targets.getCmd:
		return app.Get(targets.getPath)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
