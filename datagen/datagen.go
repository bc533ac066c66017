/*
Package datagen writes text files for the file-backed tasks.

UserLogs files hold one "userN pageX" record per line, with users user1
to user5 and pages pageA to pageE. RandomNumbers files hold one integer
in [1, 100) per line. Files are named data_<kind>_<index>.txt with
indices starting at 1, and are written concurrently. The content of each
file is derived from tasks.Seed, its kind, and its index, so repeated
runs write identical files.
*/
package datagen

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/internal"
	"github.com/exascience/parpat/internal/logger"
	"github.com/exascience/parpat/tasks"
)

// A Kind selects the content of generated files.
type Kind int

const (
	UserLogs Kind = iota
	RandomNumbers
)

const (
	DefaultFiles = 5
	DefaultLines = 200
)

var (
	users = []string{"user1", "user2", "user3", "user4", "user5"}
	pages = []string{"pageA", "pageB", "pageC", "pageD", "pageE"}
)

func (k Kind) String() string {
	switch k {
	case UserLogs:
		return "UserLogs"
	case RandomNumbers:
		return "RandomNumbers"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKind returns the kind with the given name. Names are matched as
// returned by String, or in lower case.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "UserLogs", "userlogs", "logs":
		return UserLogs, nil
	case "RandomNumbers", "randomnumbers", "numbers":
		return RandomNumbers, nil
	default:
		return 0, fmt.Errorf("unknown data kind %q: %w", name, parpat.ErrInvalidParameter)
	}
}

// FileName returns the name of the file with the given index.
func FileName(kind Kind, index int) string {
	return fmt.Sprintf("data_%v_%d.txt", kind, index)
}

func content(kind Kind, lines int, rnd *rand.Rand) []byte {
	var buf bytes.Buffer
	for range lines {
		switch kind {
		case UserLogs:
			buf.WriteString(users[rnd.IntN(len(users))])
			buf.WriteByte(' ')
			buf.WriteString(pages[rnd.IntN(len(pages))])
		case RandomNumbers:
			buf.WriteString(strconv.Itoa(1 + rnd.IntN(99)))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Generate writes files files of the given kind with lines lines each
// into dir, creating dir if needed, and returns the URLs of the files.
func Generate(ctx context.Context, fs afs.Service, dir string, kind Kind, files, lines int, log logger.Logger) ([]string, error) {
	if kind != UserLogs && kind != RandomNumbers {
		return nil, fmt.Errorf("data kind %v: %w", kind, parpat.ErrInvalidParameter)
	}
	if files < 1 || lines < 0 {
		return nil, fmt.Errorf("%d files of %d lines: %w", files, lines, parpat.ErrInvalidParameter)
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}

	exists, err := fs.Exists(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check directory %s: %w", dir, err)
	}
	if !exists {
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	urls := make([]string, files)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(internal.LogicalCores())
	for i := range urls {
		urls[i] = url.Join(dir, FileName(kind, i+1))
		g.Go(func() error {
			rnd := rand.New(rand.NewPCG(tasks.Seed, uint64(kind)<<32|uint64(i)))
			data := content(kind, lines, rnd)
			if err := fs.Upload(gctx, urls[i], file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
				return fmt.Errorf("failed to write %s: %w", urls[i], err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.InfoWithContext(ctx, "data files generated",
		zap.String("dir", dir),
		zap.Stringer("kind", kind),
		zap.Int("files", files),
		zap.Int("lines", lines))
	return urls, nil
}
