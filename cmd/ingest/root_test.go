package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	for _, path := range [][]string{
		{"run"},
		{"validate"},
		{"search"},
		{"migrate"},
		{"source", "list"},
		{"source", "add"},
		{"source", "update"},
		{"source", "remove"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, strings.Join(path, " "))
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func executeRoot(args ...string) error {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		flagOutput = "text"
	}()
	return rootCmd.Execute()
}

func TestRootCommand_RejectsUnknownOutput(t *testing.T) {
	err := executeRoot("search", "--local", "--output", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --output")
}

func TestSearchCommand_SourceAndLocalExclusive(t *testing.T) {
	defer func() {
		flagSearchSource = 0
		flagSearchLocal = false
	}()
	err := executeRoot("search", "--source", "1", "--local", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestSourceUpdate_RequiresID(t *testing.T) {
	err := executeRoot("source", "update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
