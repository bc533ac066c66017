package datagen_test

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/datagen"
	"github.com/exascience/parpat/tasks"
)

func TestGenerateUserLogs(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	dir := filepath.Join(t.TempDir(), "logs")

	urls, err := datagen.Generate(ctx, fs, dir, datagen.UserLogs, 3, 50, nil)
	require.NoError(t, err)
	require.Len(t, urls, 3)
	for i, u := range urls {
		require.Equal(t, datagen.FileName(datagen.UserLogs, i+1), filepath.Base(u))
	}

	lines, err := tasks.ReadLines(ctx, fs, dir)
	require.NoError(t, err)
	require.Len(t, lines, 150)
	record := regexp.MustCompile(`^user[1-5] page[A-E]$`)
	for _, line := range lines {
		require.Regexp(t, record, line)
	}

	task, err := tasks.NewFrequency(ctx, parpat.Options{Dir: dir, FS: fs})
	require.NoError(t, err)
	n, err := task.Sequential()
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 6)
	require.LessOrEqual(t, n, 150)
}

func TestGenerateRandomNumbers(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	dir := t.TempDir()

	_, err := datagen.Generate(ctx, fs, dir, datagen.RandomNumbers, 2, 500, nil)
	require.NoError(t, err)

	lines, err := tasks.ReadLines(ctx, fs, dir)
	require.NoError(t, err)
	require.Len(t, lines, 1000)
	for _, line := range lines {
		n, err := strconv.Atoi(line)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1)
		require.Less(t, n, 100)
	}

	task, err := tasks.NewDedup(ctx, parpat.Options{Dir: dir, FS: fs})
	require.NoError(t, err)
	n, err := task.ParallelFor()
	require.NoError(t, err)
	require.Positive(t, n)
	require.LessOrEqual(t, n, 99)
}

func TestGenerateIsReproducible(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	first, second := t.TempDir(), t.TempDir()

	_, err := datagen.Generate(ctx, fs, first, datagen.UserLogs, 2, 100, nil)
	require.NoError(t, err)
	_, err = datagen.Generate(ctx, fs, second, datagen.UserLogs, 2, 100, nil)
	require.NoError(t, err)

	expected, err := tasks.ReadLines(ctx, fs, first)
	require.NoError(t, err)
	actual, err := tasks.ReadLines(ctx, fs, second)
	require.NoError(t, err)
	require.Equal(t, expected, actual)
	require.NotEqual(t, expected[:100], expected[100:])
}

func TestGenerateInvalid(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	dir := t.TempDir()

	for _, test := range []struct {
		kind         datagen.Kind
		files, lines int
	}{
		{datagen.UserLogs, 0, 10},
		{datagen.UserLogs, 2, -1},
		{datagen.Kind(7), 2, 10},
	} {
		_, err := datagen.Generate(ctx, fs, dir, test.kind, test.files, test.lines, nil)
		require.ErrorIs(t, err, parpat.ErrInvalidParameter)
	}
}

func TestParseKind(t *testing.T) {
	for name, expected := range map[string]datagen.Kind{
		"UserLogs":      datagen.UserLogs,
		"logs":          datagen.UserLogs,
		"RandomNumbers": datagen.RandomNumbers,
		"numbers":       datagen.RandomNumbers,
	} {
		kind, err := datagen.ParseKind(name)
		require.NoError(t, err)
		require.Equal(t, expected, kind)
	}
	_, err := datagen.ParseKind("images")
	require.ErrorIs(t, err, parpat.ErrInvalidParameter)

	require.Equal(t, "data_UserLogs_1.txt", datagen.FileName(datagen.UserLogs, 1))
	require.Equal(t, "Kind(7)", datagen.Kind(7).String())
}
