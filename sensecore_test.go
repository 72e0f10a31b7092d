package sensecore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/errors"
	"github.com/reglet-dev/sensecore/host"
	"github.com/reglet-dev/sensecore/host/registry"
	"github.com/reglet-dev/sensecore/session"
)

func TestCreateSession(t *testing.T) {
	modules := registry.NewRegistry()
	require.NoError(t, session.Register(modules, "/opt/sensecore/core"))
	dispatch := filepath.Join(t.TempDir(), "dispatch.yaml")
	require.NoError(t, os.WriteFile(dispatch, []byte("core: /opt/sensecore/core\n"), 0o644))

	cfg, err := ConfigFromMap(map[string]any{"dispatch_file": dispatch, "arch": "arm64"})
	require.NoError(t, err)
	opts, err := cfg.LoaderOptions()
	require.NoError(t, err)
	opts = append(opts, host.WithEnvironment(map[string]string{}), host.WithModuleRegistry(modules))

	root := CreateSession(context.Background(), opts...)
	require.NotNil(t, root)
	defer root.Release()

	sess, ok := root.Session()
	require.True(t, ok)
	assert.Equal(t, Version, sess.Version())
	assert.Equal(t, entities.StepSystem, root.Candidate().Step)
}

func TestBootstrap_NotFound(t *testing.T) {
	root, report, err := Bootstrap(context.Background(),
		host.WithEnvironment(map[string]string{"SENSECORE_DISPATCH_FILE": filepath.Join(t.TempDir(), "none.yaml")}),
		host.WithModuleRegistry(registry.NewRegistry()))
	assert.Nil(t, root)
	require.NotNil(t, report)

	var derr *errors.DiscoveryError
	assert.ErrorAs(t, err, &derr)
	assert.Nil(t, CreateSession(context.Background(),
		host.WithEnvironment(map[string]string{"SENSECORE_DISPATCH_FILE": filepath.Join(t.TempDir(), "none.yaml")}),
		host.WithModuleRegistry(registry.NewRegistry())))
}

func TestConfigFromMap(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]any{
		"arch":              "amd64",
		"library":           "libsensecore.wasm",
		"version":           "11.0",
		"compiled_fallback": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "amd64", cfg.Arch)
	assert.True(t, cfg.CompiledFallback)

	tests := []struct {
		name string
		in   map[string]any
	}{
		{"bad arch", map[string]any{"arch": "x86-64"}},
		{"library with separator", map[string]any{"library": "lib/core.wasm"}},
		{"bad version", map[string]any{"version": "eleven"}},
		{"wrong type", map[string]any{"module_cache": "yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConfigFromMap(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestConfig_LoaderOptions(t *testing.T) {
	opts, err := Config{}.LoaderOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	_, err = Config{Version: "1.x"}.LoaderOptions()
	assert.Error(t, err)
}
