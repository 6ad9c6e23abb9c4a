package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/confstack/confstack/internal/application"
)

func newTestApp(t *testing.T) (*application.App, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	defaultsPath := filepath.Join(dir, "defaults.yaml")
	require.NoError(t, os.WriteFile(defaultsPath, []byte("mode: debug\ndb:\n  host: localhost\n"), 0o644))

	var out bytes.Buffer
	app, err := application.New(application.Options{DefaultsFile: defaultsPath}, zaptest.NewLogger(t), &out)
	require.NoError(t, err)
	return app, &out
}

func TestDispatch(t *testing.T) {
	targets := commandTargets{
		renderCmd: "render",
		envCmd:    "env",
		getCmd:    "get",
	}

	t.Run("render", func(t *testing.T) {
		app, out := newTestApp(t)
		require.NoError(t, dispatch("render", app, targets))
		assert.Contains(t, out.String(), "mode: debug")
	})

	t.Run("env", func(t *testing.T) {
		app, out := newTestApp(t)
		require.NoError(t, dispatch("env", app, targets))
		assert.Contains(t, out.String(), "export MODE=debug")
	})

	t.Run("get", func(t *testing.T) {
		app, out := newTestApp(t)
		targets := targets
		targets.getPath = "db.host"
		require.NoError(t, dispatch("get", app, targets))
		assert.Equal(t, "localhost\n", out.String())
	})

	t.Run("unknown command", func(t *testing.T) {
		app, _ := newTestApp(t)
		require.Error(t, dispatch("bogus", app, targets))
	})
}
