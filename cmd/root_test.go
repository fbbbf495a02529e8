package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"points", "survey", "plan", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "rescue-router", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestPlanCommand_Flags(t *testing.T) {
	for _, name := range []string{"address", "city", "avoid", "format", "output"} {
		require.NotNil(t, planCmd.Flags().Lookup(name), "plan command should have --%s flag", name)
	}
	assert.Equal(t, "json", planCmd.Flags().Lookup("format").DefValue)
}

func TestPointsCommand_Flags(t *testing.T) {
	flag := pointsCmd.Flags().Lookup("radius-km")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
	require.NotNil(t, pointsCmd.Flags().Lookup("center"))
}

func TestSurveyCommand_Flags(t *testing.T) {
	require.NotNil(t, surveyCmd.Flags().Lookup("address"))
	require.NotNil(t, surveyCmd.Flags().Lookup("city"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
