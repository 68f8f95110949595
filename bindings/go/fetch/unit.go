package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/metrics"
	"github.com/uklance/gradle-dependency-export/bindings/go/resolver"
)

type dependency struct {
	notation   string
	coordinate coordinate.Coordinate
	packaging  string
}

// Unit is a named, mutable collection of dependencies. It is safe for concurrent use,
// but is usually owned by a single resolution.
type Unit struct {
	name   string
	engine *Engine

	mu           sync.Mutex
	transitive   bool
	dependencies []dependency
}

var _ resolver.FetchUnit = (*Unit)(nil)

func (u *Unit) Name() string {
	return u.name
}

func (u *Unit) SetTransitive(transitive bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.transitive = transitive
}

func (u *Unit) Transitive() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.transitive
}

// AddDependency adds a dependency in notation "<groupId>:<artifactId>:<version>[@<packaging>]".
func (u *Unit) AddDependency(notation string) error {
	c, packaging, err := coordinate.ParseNotation(notation)
	if err != nil {
		return fmt.Errorf("adding dependency %q to fetch unit %q failed: %w", notation, u.name, err)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.dependencies = append(u.dependencies, dependency{notation: notation, coordinate: c, packaging: packaging})
	return nil
}

// Dependencies returns the notations added to the unit in order.
func (u *Unit) Dependencies() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	notations := make([]string, 0, len(u.dependencies))
	for _, dep := range u.dependencies {
		notations = append(notations, dep.notation)
	}
	return notations
}

// ResolveFiles fetches all dependencies of a non-transitive unit and returns their local
// files in order, without duplicates.
func (u *Unit) ResolveFiles(ctx context.Context) (_ []string, err error) {
	u.mu.Lock()
	transitive := u.transitive
	deps := slices.Clone(u.dependencies)
	u.mu.Unlock()

	if transitive {
		return nil, fmt.Errorf("resolving fetch unit %q failed: %w", u.name, ErrTransitiveUnsupported)
	}

	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailure
		}
		resolveDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", Realm), slog.String("unit", u.name))
	files := make([]string, 0, len(deps))
	for _, dep := range deps {
		repo, err := u.engine.provider.RepositoryFor(ctx, dep.coordinate)
		if err != nil {
			return nil, fmt.Errorf("fetch unit %q: %w", u.name, err)
		}
		file, err := repo.Fetch(ctx, dep.coordinate, dep.packaging)
		if err != nil {
			return nil, fmt.Errorf("fetch unit %q: resolving %s failed: %w", u.name, dep.notation, err)
		}
		logger.DebugContext(ctx, "resolved dependency",
			slog.String("notation", dep.notation),
			slog.String("repository", repo.Name()),
			slog.String("file", file),
		)
		if !slices.Contains(files, file) {
			files = append(files, file)
		}
	}
	return files, nil
}

// ResolveToSingleFile resolves the unit and returns its only file.
// It fails with ErrNoFiles or ErrMultipleFiles if the unit does not resolve to exactly one file.
func (u *Unit) ResolveToSingleFile(ctx context.Context) (string, error) {
	files, err := u.ResolveFiles(ctx)
	if err != nil {
		return "", err
	}
	switch len(files) {
	case 0:
		return "", fmt.Errorf("fetch unit %q: %w", u.name, ErrNoFiles)
	case 1:
		return files[0], nil
	default:
		return "", fmt.Errorf("fetch unit %q: %w: %v", u.name, ErrMultipleFiles, files)
	}
}
