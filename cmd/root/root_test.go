package root_test

import (
	"os"
	"testing"

	"fjacquet/portfolio-parser/cmd/root"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "portfolio-parser", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "broker transaction exports")
	assert.Contains(t, root.Cmd.Long, "Redis Streams worker")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestInit_Flags(t *testing.T) {
	root.Init()
	root.Init()

	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, root.Cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCommand_PersistentPreRunE(t *testing.T) {
	originalConfig := root.AppConfig
	originalContainer := root.AppContainer
	originalFlags := root.Flags
	defer func() {
		root.AppConfig = originalConfig
		root.AppContainer = originalContainer
		root.Flags = originalFlags
	}()

	chdir(t, t.TempDir())
	root.Flags = root.GlobalFlags{LogLevel: "debug", LogFormat: "json"}

	require.NoError(t, root.Cmd.PersistentPreRunE(&cobra.Command{}, nil))
	require.NotNil(t, root.GetContainer())
	require.NotNil(t, root.GetConfig())
	assert.Equal(t, "debug", root.GetConfig().Log.Level)
	assert.Equal(t, "json", root.GetConfig().Log.Format)

	assert.NotPanics(t, func() {
		root.Cmd.PersistentPostRun(&cobra.Command{}, nil)
	})
}

func TestRootCommand_BadConfigFile(t *testing.T) {
	originalFlags := root.Flags
	defer func() { root.Flags = originalFlags }()

	root.Flags = root.GlobalFlags{ConfigFile: "/nonexistent/portfolio.yaml"}
	err := root.Cmd.PersistentPreRunE(&cobra.Command{}, nil)
	assert.Error(t, err)
}

func TestRootCommand_InvalidLogFlags(t *testing.T) {
	originalContainer := root.AppContainer
	originalFlags := root.Flags
	defer func() {
		root.AppContainer = originalContainer
		root.Flags = originalFlags
	}()
	chdir(t, t.TempDir())

	tests := []struct {
		name     string
		flags    root.GlobalFlags
		errorMsg string
	}{
		{"log format", root.GlobalFlags{LogFormat: "xml"}, "invalid log format: xml"},
		{"log level", root.GlobalFlags{LogLevel: "loud"}, "invalid log level: loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root.AppContainer = nil
			root.Flags = tt.flags

			err := root.Cmd.PersistentPreRunE(&cobra.Command{}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
			assert.Nil(t, root.GetContainer())
		})
	}
}

func TestRootCommand_Run(t *testing.T) {
	assert.NotPanics(t, func() {
		root.Cmd.Run(root.Cmd, []string{})
	})
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
