package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"client"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadConfig_Defaults(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()
	require.Equal(t, "http://localhost:8080", cfg.ServerEndpointURL)
	require.Equal(t, "brospace.db", cfg.DatabasePath)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_JSONOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_endpoint_url": "https://api.example.com",
		"request_timeout": "30s"
	}`), 0o600))

	withArgs(t, "-c", path)

	cfg := LoadConfig()
	require.Equal(t, "https://api.example.com", cfg.ServerEndpointURL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	// untouched fields keep defaults
	require.Equal(t, "brospace.db", cfg.DatabasePath)
}

func TestLoadConfig_EnvOverridesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_endpoint_url": "https://json.example.com"}`), 0o600))

	withArgs(t, "-c", path)
	t.Setenv("BROSPACE_SERVER_ENDPOINT_URL", "https://env.example.com")

	cfg := LoadConfig()
	require.Equal(t, "https://env.example.com", cfg.ServerEndpointURL)
}

func TestLoadConfig_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("BROSPACE_SERVER_ENDPOINT_URL", "https://env.example.com")
	withArgs(t, "-a", "https://flag.example.com", "-f", "/tmp/other.db")

	cfg := LoadConfig()
	require.Equal(t, "https://flag.example.com", cfg.ServerEndpointURL)
	require.Equal(t, "/tmp/other.db", cfg.DatabasePath)
}
