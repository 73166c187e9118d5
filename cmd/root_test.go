package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdocs/internal/config"
)

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "teamdocs", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)

	for _, name := range []string{"output", "quiet", "debug", "log-format", "config-path", "api-url", "session-id", "session-backend"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag %s", name)
	}
}

func TestSubcommands(t *testing.T) {
	found := map[string]*cobra.Command{}
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = c
	}
	for _, name := range []string{"version", "drive", "team", "doc"} {
		assert.Contains(t, found, name)
	}

	drive := map[string]bool{}
	for _, c := range found["drive"].Commands() {
		drive[c.Name()] = true
	}
	assert.True(t, drive["connect"])
	assert.True(t, drive["status"])
	assert.True(t, drive["callback"])
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{Use: "test", Version: "1.0.0"}
	testCmd.SetVersionTemplate(`{{printf "teamdocs version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())
	assert.Equal(t, "teamdocs version 1.0.0\n", buf.String())
}

func TestInvalidOutputFormat(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"version", "-o", "xml"})
	assert.ErrorContains(t, root.Execute(), "unsupported output format")
}

func TestInvalidLogFormat(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"version", "--log-format", "xml"})
	assert.ErrorContains(t, root.Execute(), "unsupported log format")
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())

	buf.Reset()
	printError(&buf, &config.ConfigurationError{
		FilePath:    "/tmp/config.yaml",
		ErrorType:   "parse",
		Err:         errors.New("bad indent"),
		Suggestions: []string{"check the YAML indentation"},
	})
	assert.Contains(t, buf.String(), "parse error in /tmp/config.yaml")
	assert.Contains(t, buf.String(), "- check the YAML indentation")
}
