package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/deviceadmin/internal/utils"
)

// chdir moves into an empty dir so a developer's .env can't leak into tests.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, utils.DefaultDataDir(), cfg.DataDir)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "", cfg.DeviceID)
	assert.Equal(t, "127.0.0.1:8081", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("DEVICEADMIN_DATA_DIR", "/var/lib/deviceadmin")
	t.Setenv("DEVICEADMIN_STORE", "SQLite")
	t.Setenv("DEVICEADMIN_DEVICE_ID", " android-1234 ")
	t.Setenv("DEVICEADMIN_LISTEN_ADDR", ":9000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/deviceadmin", cfg.DataDir)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "android-1234", cfg.DeviceID)
	assert.Equal(t, ":9000", cfg.ListenAddr)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "deviceadmin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("STORE: sqlite\nLOG_LEVEL: debug\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DEVICEADMIN_LOG_LEVEL=warn\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("DEVICEADMIN_LOG_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	dir := chdir(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.ErrorIs(t, err, utils.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	valid := Config{DataDir: "/tmp/x", Store: StoreFile, ListenAddr: ":8081"}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Store = "postgres"
	assert.ErrorIs(t, bad.Validate(), utils.ErrInvalidConfig)

	bad = valid
	bad.DataDir = " "
	assert.ErrorIs(t, bad.Validate(), utils.ErrInvalidConfig)

	bad = valid
	bad.ListenAddr = ""
	assert.ErrorIs(t, bad.Validate(), utils.ErrInvalidConfig)
}
