// Package repository looks up project models and other artifacts in repositories
// following the Maven repository layout: local directories, remote HTTP repositories
// and ordered chains of both.
package repository

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/runtime"
)

// ErrNotFound is returned if a repository does not hold the requested artifact.
var ErrNotFound = errors.New("not found in repository")

const Realm = "repository"

// Repository provides artifacts as files in the local filesystem.
type Repository interface {
	// Name identifies the repository in logs and errors.
	Name() string
	// Fetch returns the absolute path of the artifact of c with the given extension,
	// e.g. "pom". It returns an error wrapping ErrNotFound if the repository does not hold it.
	Fetch(ctx context.Context, c coordinate.Coordinate, extension string) (string, error)
}

var (
	TypeLocal  = runtime.NewVersionedType("MavenLocalRepository", "v1")
	TypeRemote = runtime.NewVersionedType("MavenRepository", "v1")
)

// Spec describes a repository. Its canonical JSON form identifies repository instances.
type Spec struct {
	Type runtime.Type `json:"type"`
	Name string       `json:"name"`
	// URL is the base URL of a remote repository or the directory of a local one.
	URL string `json:"url"`
}

// Path returns the slash separated location of an artifact relative to the
// repository root, e.g. "org/example/lib/1.0/lib-1.0.pom".
func Path(c coordinate.Coordinate, extension string) string {
	return path.Join(
		strings.ReplaceAll(c.GroupID, ".", "/"),
		c.ArtifactID,
		c.Version,
		c.ArtifactID+"-"+c.Version+"."+extension,
	)
}
