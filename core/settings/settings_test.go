package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSettings struct {
	Base    `mapstructure:",squash"`
	MaxConn int `mapstructure:"max_conn"`
}

func TestBaseProsaNameDefaults(t *testing.T) {
	t.Setenv("HOSTNAME", "")
	var b Base
	assert.Equal(t, "prosa", b.GetProsaName())

	t.Setenv("HOSTNAME", "worker-1")
	assert.Equal(t, "prosa-worker-1", b.GetProsaName())

	b.SetProsaName("custom")
	assert.Equal(t, "custom", b.GetProsaName())
}

func TestBaseGetObservability(t *testing.T) {
	var b Base
	b.Observability.LogLevel = "debug"
	assert.Equal(t, "debug", b.GetObservability().LogLevel)
}

func TestGetConfigBuilderSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: demo\nmax_conn: 5\n"), 0o644))

	v, err := GetConfigBuilder(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", v.GetString("name"))
	assert.Equal(t, 5, v.GetInt("max_conn"))
}

func TestGetConfigBuilderDirectoryMerge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: demo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("max_conn: 9\n"), 0o644))

	v, err := GetConfigBuilder(dir)
	require.NoError(t, err)
	assert.Equal(t, "demo", v.GetString("name"))
	assert.Equal(t, 9, v.GetInt("max_conn"))
}

func TestGetAdaptorConfigBuilderGlobMerge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10-base.yaml"), []byte("target: svc\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20-override.yaml"), []byte("retries: 3\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not config"), 0o644))

	v, err := GetAdaptorConfigBuilder(filepath.Join(dir, "*"))
	require.NoError(t, err)
	assert.Equal(t, "svc", v.GetString("target"))
	assert.Equal(t, 3, v.GetInt("retries"))
}

func TestWriteConfigYAMLAndTOML(t *testing.T) {
	dir := t.TempDir()
	s := &testSettings{Base: Base{Name: "demo"}, MaxConn: 3}

	yamlPath := filepath.Join(dir, "out.yaml")
	require.NoError(t, WriteConfig(s, yamlPath))
	contents, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "demo")

	tomlPath := filepath.Join(dir, "out.toml")
	require.NoError(t, WriteConfig(s, tomlPath))
	contents, err = os.ReadFile(tomlPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "demo")
}
