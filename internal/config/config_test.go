package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stc/internal/extension"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("STC_DEBUG", "")
	t.Setenv("STC_PATH", "")

	cfg := DefaultConfig()
	assert.False(t, cfg.Debug)
	assert.Equal(t, 2, cfg.MaxPasses)
	assert.Equal(t, extension.BuiltinNames(), cfg.Extensions)
	assert.Equal(t, logrus.WarnLevel, cfg.Level())
	assert.Equal(t, []string{"."}, cfg.SearchPaths)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigFromEnv(t *testing.T) {
	sep := string(filepath.ListSeparator)
	t.Setenv("STC_DEBUG", "true")
	t.Setenv("STC_PATH", "/a"+sep+" "+sep+"/b")

	cfg := DefaultConfig()
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"/a", "/b"}, cfg.SearchPaths)
}

func TestParseConfig(t *testing.T) {
	t.Setenv("STC_PATH", "")
	data := []byte(`
debug: true
max_passes: 1
extensions: [default]
log_level: debug
search_paths: [lib, /abs]
`)
	cfg, err := ParseConfig(data, "/proj/stc.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 1, cfg.MaxPasses)
	assert.Equal(t, []string{"default"}, cfg.Extensions)
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
	assert.Equal(t, []string{filepath.Join("/proj", "lib"), "/abs"}, cfg.SearchPaths)

	r, err := cfg.Registry()
	require.NoError(t, err)
	assert.True(t, r.Has("default"))
	assert.False(t, r.Has("strings"))
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("debug: false\n"), "stc.yaml")
	require.NoError(t, err)
	assert.Equal(t, MaxPassesLimit, cfg.MaxPasses)
	assert.Equal(t, extension.BuiltinNames(), cfg.Extensions)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"bad yaml", "debug: [", "parsing stc.yaml"},
		{"too many passes", "max_passes: 3", "max_passes must be between 1 and 2, got 3"},
		{"zero passes", "max_passes: 0", "max_passes must be between 1 and 2, got 0"},
		{"unknown module", "extensions: [default, magic]", "extensions[1]: unknown extension module 'magic'"},
		{"duplicate module", "extensions: [default, default]", "duplicate extension module 'default'"},
		{"bad level", "log_level: loud", "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), "stc.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadAndFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindConfig(nested)
	require.NoError(t, err)
	if found != "" {
		// a stc.yaml above the temp dir would shadow the test fixture
		t.Skipf("unexpected config at %s", found)
	}

	path := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(path, []byte("max_passes: 1\n"), 0644))

	found, err = FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	cfg, err := LoadConfig(found)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxPasses)

	_, err = LoadConfig(filepath.Join(root, "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")
}
