package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/exascience/parpat/cmd/util"
	"github.com/exascience/parpat/tasks"
)

func TestListCommand(t *testing.T) {
	util.PrepareTempConfigDir(t)
	var out bytes.Buffer
	rootCmd := NewRootCommand()
	rootCmd.AddCommand(NewListCommand())
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"list"})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, []string{"alternation", "dedup", "extremum", "frequency", "prime", "reverse", "sort"},
		strings.Fields(out.String()))
}

func TestGenerateCommand(t *testing.T) {
	util.PrepareTempConfigDir(t)
	dir := filepath.Join(t.TempDir(), "numbers")

	var out bytes.Buffer
	rootCmd := NewRootCommand()
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"generate", "--dir", dir, "--kind", "numbers", "--files", "2", "--lines", "10", "--log-level", "none"})
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "generated 2 RandomNumbers files")

	lines, err := tasks.ReadLines(t.Context(), afs.New(), dir)
	require.NoError(t, err)
	require.Len(t, lines, 20)
}

func TestGenerateCommandUnknownKind(t *testing.T) {
	util.PrepareTempConfigDir(t)
	rootCmd := NewRootCommand()
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"generate", "--dir", t.TempDir(), "--kind", "images"})
	require.ErrorContains(t, rootCmd.Execute(), "unknown data kind")
}
