package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "inspect", "export"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "riskmap", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentPreRunE)
}

func TestServeCommand_Flags(t *testing.T) {
	port := serveCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "0", port.DefValue)
	assert.Equal(t, "p", port.Shorthand)

	layout := serveCmd.Flags().Lookup("layout")
	require.NotNil(t, layout)
	assert.Equal(t, "", layout.DefValue)
}

func TestInspectCommand_Flags(t *testing.T) {
	model := inspectCmd.Flags().Lookup("model")
	require.NotNil(t, model)
	assert.Equal(t, []string{"true"}, model.Annotations[cobra.BashCompOneRequiredFlag])
	assert.NotNil(t, inspectCmd.Flags().Lookup("xlsx"))
}

func TestExportCommand_Flags(t *testing.T) {
	require.NotNil(t, exportCmd.Flags().Lookup("model"))
	out := exportCmd.Flags().Lookup("out")
	require.NotNil(t, out)
	assert.Equal(t, "o", out.Shorthand)
}
