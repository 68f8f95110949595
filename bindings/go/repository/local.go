package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
)

// Local is a read only repository in a local directory, for example ~/.m2/repository.
type Local struct {
	name string
	root string
}

var _ Repository = (*Local)(nil)

// NewLocal creates a repository for the given directory.
// The directory does not need to exist, lookups then always miss.
func NewLocal(name, root string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("local repository %q has no directory", name)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving directory of local repository %q failed: %w", name, err)
	}
	return &Local{name: name, root: abs}, nil
}

func (l *Local) Name() string {
	return l.name
}

// Root returns the absolute directory of the repository.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) Fetch(ctx context.Context, c coordinate.Coordinate, extension string) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	p := filepath.Join(l.root, filepath.FromSlash(Path(c, extension)))
	fi, err := os.Stat(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("artifact %s@%s in %q: %w", c, extension, l.name, ErrNotFound)
	case err != nil:
		return "", fmt.Errorf("looking up %s@%s in %q failed: %w", c, extension, l.name, err)
	case !fi.Mode().IsRegular():
		return "", fmt.Errorf("%s is not a regular file: %w", p, ErrNotFound)
	}
	slogcontext.FromCtx(ctx).DebugContext(ctx, "found artifact in local repository",
		slog.String("realm", Realm),
		slog.String("repository", l.name),
		slog.String("path", p),
	)
	return p, nil
}
