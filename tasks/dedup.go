package tasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/executor"
)

// Dedup counts the distinct integers in the *.txt files of a directory.
// Lines that do not hold an integer are skipped.
type Dedup struct {
	*executor.Tally[int]
	files *textFiles
}

// NewDedup returns a deduplication task over the *.txt files in
// opts.Dir, and loads them.
func NewDedup(ctx context.Context, opts parpat.Options) (*Dedup, error) {
	files, err := openTextFiles(ctx, opts)
	if err != nil {
		return nil, err
	}
	t := &Dedup{
		Tally: executor.NewTally[int](executor.Distinct, executorOptions(opts)...),
		files: files,
	}
	if err := t.load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseInts returns the integers held by lines, ignoring surrounding
// white space, and the number of lines that do not hold one.
func ParseInts(lines []string) (values []int, skipped int) {
	values = make([]int, 0, len(lines))
	for _, line := range lines {
		v, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			skipped++
			continue
		}
		values = append(values, v)
	}
	return
}

func (t *Dedup) load(ctx context.Context) error {
	lines, err := t.files.read(ctx)
	if err != nil {
		return err
	}
	values, skipped := ParseInts(lines)
	if skipped > 0 {
		t.files.logger.DebugWithContext(ctx, "skipped lines without an integer", zap.Int("skipped", skipped))
	}
	t.Load(values)
	return nil
}

func (t *Dedup) Name() string {
	return fmt.Sprintf("distinct values in %v files of %s", len(t.files.files), t.files.dir)
}

// Setup reads the files again.
func (t *Dedup) Setup() error {
	return t.load(context.Background())
}

func newDedupTask(ctx context.Context, opts parpat.Options) (parpat.Task, error) {
	t, err := NewDedup(ctx, opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}
