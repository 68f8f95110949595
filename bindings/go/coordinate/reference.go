package coordinate

import "fmt"

// Parent is the parent declaration of a project model.
type Parent struct {
	GroupID      string `json:"groupId"`
	ArtifactID   string `json:"artifactId"`
	Version      string `json:"version"`
	RelativePath string `json:"relativePath,omitempty"`
}

// Coordinate extracts the referenced coordinate.
func (p Parent) Coordinate() (Coordinate, error) {
	return fromReference("parent", p.GroupID, p.ArtifactID, p.Version)
}

func (p Parent) String() string {
	return fmt.Sprintf("%s:%s:%s", p.GroupID, p.ArtifactID, p.Version)
}

// Dependency is a dependency declaration of a project model,
// for example an import scoped entry of the dependency management.
type Dependency struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
	Type       string `json:"type,omitempty"`
	Classifier string `json:"classifier,omitempty"`
	Scope      string `json:"scope,omitempty"`
}

// Coordinate extracts the referenced coordinate.
func (d Dependency) Coordinate() (Coordinate, error) {
	return fromReference("dependency", d.GroupID, d.ArtifactID, d.Version)
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s:%s:%s", d.GroupID, d.ArtifactID, d.Version)
}

func fromReference(kind, groupID, artifactID, version string) (Coordinate, error) {
	for _, field := range []struct{ name, value string }{
		{"groupId", groupID},
		{"artifactId", artifactID},
		{"version", version},
	} {
		if field.value == "" {
			return Coordinate{}, fmt.Errorf("%w: %s %s:%s:%s is missing %s",
				ErrIncompleteReference, kind, groupID, artifactID, version, field.name)
		}
	}
	c := Coordinate{GroupID: groupID, ArtifactID: artifactID, Version: version}
	if err := c.Validate(); err != nil {
		return Coordinate{}, fmt.Errorf("%s reference: %w", kind, err)
	}
	return c, nil
}
