package tasks

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/internal"
	"github.com/exascience/parpat/internal/logger"
	"github.com/exascience/parpat/pipeline"
)

// TextFiles returns the *.txt files directly inside dir, sorted by name.
// It returns an error wrapping parpat.ErrNotFound if dir does not exist.
func TextFiles(ctx context.Context, fs afs.Service, dir string) ([]storage.Object, error) {
	exists, err := fs.Exists(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check directory %s: %w", dir, err)
	}
	if !exists {
		return nil, fmt.Errorf("directory %s: %w", dir, parpat.ErrNotFound)
	}
	objects, err := fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}
	var files []storage.Object
	for _, object := range objects {
		if !object.IsDir() && path.Ext(object.Name()) == ".txt" {
			files = append(files, object)
		}
	}
	slices.SortFunc(files, func(a, b storage.Object) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return files, nil
}

// splitLines returns the lines of data in order.
func splitLines(data []byte) ([]string, error) {
	var lines []string
	scanner := pipeline.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	var p pipeline.Pipeline[string]
	p.Source(scanner)
	p.Add(pipeline.Ord(pipeline.Slice(&lines)))
	if err := p.Run(); err != nil {
		return nil, err
	}
	return lines, scanner.Err()
}

// readFiles downloads files concurrently and returns their lines, file
// by file in the order of files.
func readFiles(ctx context.Context, fs afs.Service, files []storage.Object) ([]string, error) {
	contents := make([][]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(internal.LogicalCores())
	for i, object := range files {
		g.Go(func() error {
			data, err := fs.Download(ctx, object)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", object.URL(), err)
			}
			if contents[i], err = splitLines(data); err != nil {
				return fmt.Errorf("failed to split %s: %w", object.URL(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var lines []string
	for _, c := range contents {
		lines = append(lines, c...)
	}
	return lines, nil
}

// ReadLines returns the lines of all *.txt files directly inside dir, in
// the order of the file names.
func ReadLines(ctx context.Context, fs afs.Service, dir string) ([]string, error) {
	files, err := TextFiles(ctx, fs, dir)
	if err != nil {
		return nil, err
	}
	return readFiles(ctx, fs, files)
}

// textFiles is the dataset source of the file-backed tasks. The set of
// files is fixed when the task is created; Setup reads it again.
type textFiles struct {
	fs     afs.Service
	dir    string
	files  []storage.Object
	logger logger.Logger
}

func openTextFiles(ctx context.Context, opts parpat.Options) (*textFiles, error) {
	if opts.FS == nil {
		opts.FS = afs.New()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoopLogger()
	}
	files, err := TextFiles(ctx, opts.FS, opts.Dir)
	if err != nil {
		return nil, err
	}
	return &textFiles{
		fs:     opts.FS,
		dir:    opts.Dir,
		files:  files,
		logger: opts.Logger.With(zap.String("dir", opts.Dir)),
	}, nil
}

func (f *textFiles) read(ctx context.Context) ([]string, error) {
	lines, err := readFiles(ctx, f.fs, f.files)
	if err != nil {
		return nil, err
	}
	f.logger.DebugWithContext(ctx, "read text files", zap.Int("files", len(f.files)), zap.Int("lines", len(lines)))
	return lines, nil
}
