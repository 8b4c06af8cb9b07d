package dtnsim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempSettings(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestParseSettingsFileBasic(t *testing.T) {
	path := writeTempSettings(t, `
# a comment
Scenario.nrofHosts = 40
Scenario.router = epidemic
`)
	s, err := ParseSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, 40, s.GetInt("Scenario.nrofHosts"))
	require.Equal(t, "epidemic", s.GetString("Scenario.router"))
	require.True(t, s.IsSet("Scenario.router"))
	require.False(t, s.IsSet("Scenario.missing"))
}

func TestParseSettingsFileSubstitution(t *testing.T) {
	path := writeTempSettings(t, `
Scenario.worldWidth = 1000
Scenario.worldHeight = %%Scenario.worldWidth%%
`)
	s, err := ParseSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, 1000.0, s.GetFloat64("Scenario.worldHeight"))
}

func TestParseSettingsFileSweep(t *testing.T) {
	path := writeTempSettings(t, `
Scenario.router = [epidemic; prophet; bubblerap;]
`)
	s, err := ParseSettingsFile(path)
	require.NoError(t, err)
	sweeps := s.Sweeps()
	require.Equal(t, []string{"epidemic", "prophet", "bubblerap"}, sweeps["Scenario.router"])
	require.Equal(t, "epidemic", s.GetString("Scenario.router"))
}

func TestParseSettingsFileCyclicSubstitutionErrors(t *testing.T) {
	path := writeTempSettings(t, `
A = %%B%%
B = %%A%%
`)
	_, err := ParseSettingsFile(path)
	require.Error(t, err)
}

func TestSetDefaultDoesNotOverrideParsedValue(t *testing.T) {
	path := writeTempSettings(t, `Scenario.router = prophet`)
	s, err := ParseSettingsFile(path)
	require.NoError(t, err)
	s.SetDefault("Scenario.router", "epidemic")
	require.Equal(t, "prophet", s.GetString("Scenario.router"))
}
