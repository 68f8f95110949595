package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/modelsource"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository"
	"github.com/uklance/gradle-dependency-export/bindings/go/resolver"
)

// Export copies every resolved model into a directory in repository layout, together with
// a ".sha256" checksum file, so the directory can serve as a repository itself.
//
// Listeners cannot fail a resolution, so copy errors are logged and collected, see Err.
type Export struct {
	dir string

	mu       sync.Mutex
	exported map[coordinate.Coordinate]string
	errs     []error
}

var _ resolver.Listener = (*Export)(nil)

func NewExport(dir string) (*Export, error) {
	if dir == "" {
		return nil, errors.New("export directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Export{dir: abs, exported: make(map[coordinate.Coordinate]string)}, nil
}

func (e *Export) OnResolveModel(ctx context.Context, event resolver.Event) {
	c := event.Coordinate()
	target := filepath.Join(e.dir, filepath.FromSlash(repository.Path(c, coordinate.ModelPackaging)))

	err := e.export(event.File, target)

	e.mu.Lock()
	defer e.mu.Unlock()
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", Realm))
	if err != nil {
		err = fmt.Errorf("exporting %s failed: %w", c, err)
		e.errs = append(e.errs, err)
		logger.ErrorContext(ctx, "exporting model failed", slog.String("coordinate", c.String()), slog.Any("error", err))
		return
	}
	e.exported[c] = target
	logger.DebugContext(ctx, "exported model", slog.String("coordinate", c.String()), slog.String("path", target))
}

func (e *Export) export(file, target string) error {
	src, err := modelsource.NewFile(file)
	if err != nil {
		return err
	}
	if err := modelsource.CopyToPath(src, target); err != nil {
		return err
	}
	dig, err := modelsource.Digest(src)
	if err != nil {
		return err
	}
	return os.WriteFile(target+".sha256", []byte(dig.Encoded()), 0o644)
}

// Exported returns the exported file per coordinate.
func (e *Export) Exported() map[coordinate.Coordinate]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[coordinate.Coordinate]string, len(e.exported))
	for c, p := range e.exported {
		out[c] = p
	}
	return out
}

// Err returns all export failures so far.
func (e *Export) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return errors.Join(e.errs...)
}
