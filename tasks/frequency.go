package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/executor"
)

// Frequency finds the highest number of occurrences of any line in the
// *.txt files of a directory. Lines are compared after trimming white
// space and lower-casing; blank lines are skipped.
type Frequency struct {
	*executor.Tally[string]
	files *textFiles
}

// NewFrequency returns a frequency task over the *.txt files in
// opts.Dir, and loads them.
func NewFrequency(ctx context.Context, opts parpat.Options) (*Frequency, error) {
	files, err := openTextFiles(ctx, opts)
	if err != nil {
		return nil, err
	}
	t := &Frequency{
		Tally: executor.NewTally[string](executor.Frequency, executorOptions(opts)...).
			DropMissing(func(s string) bool { return s == "" }),
		files: files,
	}
	if err := t.load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// NormalizeLines trims and lower-cases lines, and drops blank ones.
func NormalizeLines(lines []string) []string {
	values := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.ToLower(strings.TrimSpace(line)); s != "" {
			values = append(values, s)
		}
	}
	return values
}

func (t *Frequency) load(ctx context.Context) error {
	lines, err := t.files.read(ctx)
	if err != nil {
		return err
	}
	t.Load(NormalizeLines(lines))
	return nil
}

func (t *Frequency) Name() string {
	return fmt.Sprintf("most frequent line in %v files of %s", len(t.files.files), t.files.dir)
}

// Setup reads the files again.
func (t *Frequency) Setup() error {
	return t.load(context.Background())
}

/*
MostFrequent returns the most frequent value and its number of
occurrences. Among equally frequent values, the one that occurs first in
the dataset is returned. It returns "" and 0 for an empty dataset.
*/
func (t *Frequency) MostFrequent() (value string, count int) {
	counts := make(map[string]int)
	keys := t.Keys()
	for _, k := range keys {
		counts[k]++
		count = max(count, counts[k])
	}
	for _, k := range keys {
		if counts[k] == count {
			return k, count
		}
	}
	return "", 0
}

func newFrequencyTask(ctx context.Context, opts parpat.Options) (parpat.Task, error) {
	t, err := NewFrequency(ctx, opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}
