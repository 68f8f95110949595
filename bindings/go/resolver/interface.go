package resolver

import (
	"context"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/modelsource"
)

// FetchService creates named fetch units within a namespace shared by the surrounding build context.
type FetchService interface {
	CreateFetchUnit(ctx context.Context, name string) (FetchUnit, error)
}

// FetchUnit is a single, named request for artifacts.
type FetchUnit interface {
	// SetTransitive controls whether the dependencies of added artifacts are fetched as well.
	SetTransitive(transitive bool)
	// AddDependency adds an artifact in the notation "<groupId>:<artifactId>:<version>@<packaging>".
	AddDependency(notation string) error
	// ResolveToSingleFile resolves the unit and returns the path of the only resulting file.
	// It fails if the unit resolves to no file or more than one file.
	ResolveToSingleFile(ctx context.Context) (string, error)
}

// Event describes a successful resolution.
type Event struct {
	GroupID    string
	ArtifactID string
	Version    string
	// File is the absolute path of the resolved model.
	File string
}

// Coordinate returns the coordinate the event was emitted for.
func (e Event) Coordinate() coordinate.Coordinate {
	return coordinate.Coordinate{GroupID: e.GroupID, ArtifactID: e.ArtifactID, Version: e.Version}
}

// Listener is notified synchronously about every successful resolution,
// before the model source is handed to the caller.
type Listener interface {
	OnResolveModel(ctx context.Context, event Event)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(ctx context.Context, event Event)

func (f ListenerFunc) OnResolveModel(ctx context.Context, event Event) {
	f(ctx, event)
}

// Repository is a repository declared by a project model.
type Repository struct {
	ID  string
	URL string
}

// ModelResolver is what a model builder needs to read parent and import models.
type ModelResolver interface {
	ResolveModel(ctx context.Context, groupID, artifactID, version string) (modelsource.ModelSource, error)
	ResolveParent(ctx context.Context, parent coordinate.Parent) (modelsource.ModelSource, error)
	ResolveDependency(ctx context.Context, dependency coordinate.Dependency) (modelsource.ModelSource, error)
	AddRepository(ctx context.Context, repository Repository) error
	AddRepositoryReplace(ctx context.Context, repository Repository, replace bool) error
	Copy() ModelResolver
}
