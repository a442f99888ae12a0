package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"up", "down", "status", "version", "create"} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestCreateCommand_RequiresName(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"create"})
	root.SilenceErrors = true

	err := root.Execute()
	require.Error(t, err)
}

func TestCreateCommand_WritesFile(t *testing.T) {
	dir := t.TempDir()
	root := newRootCmd()
	root.SetArgs([]string{"create", "add_isbn", "--dir", dir})

	require.NoError(t, root.Execute())

	matches, err := filepath.Glob(filepath.Join(dir, "*_add_isbn.sql"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
