package flagx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	got := FilterArgs([]string{"-a", "localhost:8080", "-x", "other"}, []string{"-a"})
	require.Equal(t, []string{"-a", "localhost:8080"}, got)
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	got := FilterArgs([]string{"--config=conf.json", "-a=addr"}, []string{"--config"})
	require.Equal(t, []string{"--config=conf.json"}, got)
}

func TestFilterArgs_ValueLooksLikeFlagNotConsumed(t *testing.T) {
	got := FilterArgs([]string{"-a", "-b", "x"}, []string{"-a"})
	require.Equal(t, []string{"-a"}, got)
}

func TestFilterArgs_Empty(t *testing.T) {
	require.Empty(t, FilterArgs(nil, []string{"-a"}))
	require.Empty(t, FilterArgs([]string{"-b", "v"}, []string{"-a"}))
}

func TestJSONConfigPath(t *testing.T) {
	require.Equal(t, "conf.json", JSONConfigPath([]string{"-c", "conf.json"}))
	require.Equal(t, "conf.json", JSONConfigPath([]string{"--config=conf.json"}))
	require.Equal(t, "conf.json", JSONConfigPath([]string{"-x", "1", "-config", "conf.json"}))
	require.Equal(t, "", JSONConfigPath([]string{"-x", "1"}))
}
