package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/metrics"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository"
	"github.com/uklance/gradle-dependency-export/bindings/go/resolver"
)

const Realm = "fetch"

var (
	unitsCreated = metrics.MustRegisterCounterVec(Realm, "units_created_total",
		"Fetch units created.", "result")
	resolveDuration = metrics.MustRegisterHistogramVec(Realm, "resolve_duration_seconds",
		"Time spent resolving fetch units.", nil, "result")
)

// RepositoryProvider returns the repository a coordinate is fetched from.
type RepositoryProvider interface {
	RepositoryFor(ctx context.Context, c coordinate.Coordinate) (repository.Repository, error)
}

// Engine is a resolver.FetchService over a shared namespace of fetch units.
// It is safe for concurrent use.
type Engine struct {
	provider RepositoryProvider

	mu    sync.Mutex
	units map[string]*Unit
}

var _ resolver.FetchService = (*Engine)(nil)

func NewEngine(provider RepositoryProvider) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("repository provider is required")
	}
	return &Engine{
		provider: provider,
		units:    make(map[string]*Unit),
	}, nil
}

// CreateFetchUnit implements resolver.FetchService, see NewUnit.
func (e *Engine) CreateFetchUnit(ctx context.Context, name string) (resolver.FetchUnit, error) {
	return e.NewUnit(ctx, name)
}

// NewUnit registers a new transitive unit. It fails with ErrUnitExists if the name is taken.
func (e *Engine) NewUnit(ctx context.Context, name string) (*Unit, error) {
	if name == "" {
		unitsCreated.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, errors.New("fetch unit name must not be empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.units[name]; exists {
		unitsCreated.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("%w: %q", ErrUnitExists, name)
	}
	u := &Unit{name: name, engine: e, transitive: true}
	e.units[name] = u
	unitsCreated.WithLabelValues(metrics.ResultSuccess).Inc()

	slogcontext.FromCtx(ctx).DebugContext(ctx, "created fetch unit",
		slog.String("realm", Realm),
		slog.String("unit", name),
	)
	return u, nil
}

// Names returns the names of all registered units in sorted order.
func (e *Engine) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Sorted(maps.Keys(e.units))
}

// Lookup returns the unit with the given name.
func (e *Engine) Lookup(name string) (*Unit, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	u, ok := e.units[name]
	return u, ok
}

// Remove unregisters the unit with the given name. It reports whether the unit existed.
// Files already resolved by the unit are not touched.
func (e *Engine) Remove(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.units[name]
	delete(e.units, name)
	return ok
}
