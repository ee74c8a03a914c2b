//go:build !integration

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
	for _, name := range []string{"process", "validate", "cases", "scan", "sessions", "export", "serve", "migrate"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "sarnarr", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		flags []string
	}{
		{processCmd, []string{"case", "case-number", "sheet", "save", "format"}},
		{validateCmd, []string{"case", "case-number", "sheet"}},
		{sessionsListCmd, []string{"case-number", "limit", "offset"}},
		{exportCmd, []string{"recommendation", "output"}},
		{scanCmd, []string{"json", "sheet", "rows"}},
		{casesShowCmd, []string{"section"}},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			for _, f := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(f), "missing --%s", f)
			}
		})
	}
}

func TestProcessCommand_Defaults(t *testing.T) {
	assert.Equal(t, "json", processCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "false", processCmd.Flags().Lookup("save").DefValue)
	assert.Equal(t, "50", sessionsListCmd.Flags().Lookup("limit").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestSessionsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range sessionsCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"list", "show", "delete"} {
		assert.True(t, names[name], "sessions should have subcommand %q", name)
	}
}
