package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/modelsource"
)

// Resolver resolves coordinates to model sources through isolated, non-transitive fetch units.
//
// A Resolver is safe for concurrent use. Apart from the counter naming the fetch units,
// all state is local to a call.
type Resolver struct {
	namer    *unitNamer
	fetch    FetchService
	listener Listener
}

var _ ModelResolver = (*Resolver)(nil)

// New creates a Resolver. The task prefix identifies the calling context and prefixes
// the names of all fetch units created by the resolver.
func New(taskPrefix string, fetch FetchService, listener Listener) (*Resolver, error) {
	switch {
	case taskPrefix == "":
		return nil, errors.New("task prefix is required")
	case fetch == nil:
		return nil, errors.New("fetch service is required")
	case listener == nil:
		return nil, errors.New("listener is required")
	}
	return &Resolver{
		namer:    &unitNamer{prefix: taskPrefix},
		fetch:    fetch,
		listener: listener,
	}, nil
}

// ResolveModel resolves the project model of the given coordinate.
// On failure the returned error is an *UnresolvableCoordinateError and the listener is not notified.
func (r *Resolver) ResolveModel(ctx context.Context, groupID, artifactID, version string) (modelsource.ModelSource, error) {
	c := coordinate.Coordinate{GroupID: groupID, ArtifactID: artifactID, Version: version}
	name := r.namer.next()

	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", "resolver"))
	logger.DebugContext(ctx, "resolving model", slog.String("coordinate", c.String()), slog.String("unit", name))

	file, err := r.fetchModel(ctx, name, c)
	if err != nil {
		logger.DebugContext(ctx, "resolving model failed", slog.String("coordinate", c.String()), slog.String("unit", name), slog.Any("error", err))
		return nil, &UnresolvableCoordinateError{Coordinate: c, Unit: name, Err: err}
	}

	source, err := modelsource.NewFile(file)
	if err != nil {
		return nil, &UnresolvableCoordinateError{Coordinate: c, Unit: name, Err: err}
	}

	r.listener.OnResolveModel(ctx, Event{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
		File:       source.Location(),
	})
	return source, nil
}

func (r *Resolver) fetchModel(ctx context.Context, name string, c coordinate.Coordinate) (string, error) {
	unit, err := r.fetch.CreateFetchUnit(ctx, name)
	if err != nil {
		return "", fmt.Errorf("creating fetch unit failed: %w", err)
	}
	unit.SetTransitive(false)
	if err := unit.AddDependency(c.Notation(coordinate.ModelPackaging)); err != nil {
		return "", fmt.Errorf("adding dependency to fetch unit failed: %w", err)
	}
	file, err := unit.ResolveToSingleFile(ctx)
	if err != nil {
		return "", err
	}
	return file, nil
}

// ResolveParent resolves the model referenced by a parent declaration.
func (r *Resolver) ResolveParent(ctx context.Context, parent coordinate.Parent) (modelsource.ModelSource, error) {
	c, err := parent.Coordinate()
	if err != nil {
		return nil, &InvalidReferenceError{Kind: "parent", Reference: parent.String(), Err: err}
	}
	return r.ResolveModel(ctx, c.GroupID, c.ArtifactID, c.Version)
}

// ResolveDependency resolves the model referenced by a dependency declaration,
// typically an import of a bill of materials.
func (r *Resolver) ResolveDependency(ctx context.Context, dependency coordinate.Dependency) (modelsource.ModelSource, error) {
	c, err := dependency.Coordinate()
	if err != nil {
		return nil, &InvalidReferenceError{Kind: "dependency", Reference: dependency.String(), Err: err}
	}
	return r.ResolveModel(ctx, c.GroupID, c.ArtifactID, c.Version)
}

// AddRepository accepts and ignores a repository declared by a model.
// The repositories used for resolution are fixed by the fetch service.
func (r *Resolver) AddRepository(ctx context.Context, repository Repository) error {
	return r.AddRepositoryReplace(ctx, repository, false)
}

// AddRepositoryReplace accepts and ignores a repository declared by a model, see AddRepository.
func (r *Resolver) AddRepositoryReplace(ctx context.Context, repository Repository, replace bool) error {
	slogcontext.FromCtx(ctx).DebugContext(ctx, "ignoring model repository",
		slog.String("realm", "resolver"),
		slog.String("id", repository.ID),
		slog.String("url", repository.URL),
		slog.Bool("replace", replace),
	)
	return nil
}

// Copy returns the resolver itself. A Resolver keeps no per-call state, so the
// copy can be used concurrently with the original; both share the unit counter.
func (r *Resolver) Copy() ModelResolver {
	return r
}
