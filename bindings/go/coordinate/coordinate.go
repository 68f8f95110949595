// Package coordinate contains the Maven style artifact coordinate (groupId, artifactId, version)
// and the structured parent and dependency references that carry one.
package coordinate

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ModelPackaging is the packaging (file extension) of a project model descriptor.
	ModelPackaging = "pom"
	// DefaultPackaging is used by ParseNotation if the notation carries no "@<packaging>" suffix.
	DefaultPackaging = "jar"
)

var (
	// ErrInvalidCoordinate is returned for malformed coordinate strings or tokens.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrIncompleteReference is returned if a parent or dependency reference lacks a coordinate field.
	ErrIncompleteReference = errors.New("incomplete reference")
)

// Coordinate identifies exactly one project model. It is a comparable value type.
type Coordinate struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

// New creates a validated coordinate.
func New(groupID, artifactID, version string) (Coordinate, error) {
	c := Coordinate{GroupID: groupID, ArtifactID: artifactID, Version: version}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// MustNew is like New but panics on invalid input.
func MustNew(groupID, artifactID, version string) Coordinate {
	c, err := New(groupID, artifactID, version)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse parses "<groupId>:<artifactId>:<version>".
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("%w: %q is not of the form <groupId>:<artifactId>:<version>", ErrInvalidCoordinate, s)
	}
	return New(parts[0], parts[1], parts[2])
}

// Validate checks that all tokens are non-empty repository coordinate tokens.
// Whether the coordinate exists is up to the fetch service.
func (c Coordinate) Validate() error {
	for _, tok := range []struct{ name, value string }{
		{"groupId", c.GroupID},
		{"artifactId", c.ArtifactID},
		{"version", c.Version},
	} {
		if tok.value == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidCoordinate, tok.name)
		}
		if strings.ContainsAny(tok.value, ":@/\\ \t\r\n") {
			return fmt.Errorf("%w: %s %q contains a reserved character", ErrInvalidCoordinate, tok.name, tok.value)
		}
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%s:%s:%s", c.GroupID, c.ArtifactID, c.Version)
}

// Notation renders the dependency notation "<groupId>:<artifactId>:<version>@<packaging>"
// understood by fetch units.
func (c Coordinate) Notation(packaging string) string {
	return fmt.Sprintf("%s@%s", c, packaging)
}

// ParseNotation is the inverse of Coordinate.Notation. A missing packaging
// defaults to DefaultPackaging.
func ParseNotation(notation string) (Coordinate, string, error) {
	gav, packaging, found := strings.Cut(notation, "@")
	if !found {
		packaging = DefaultPackaging
	}
	if packaging == "" {
		return Coordinate{}, "", fmt.Errorf("%w: empty packaging in notation %q", ErrInvalidCoordinate, notation)
	}
	c, err := Parse(gav)
	if err != nil {
		return Coordinate{}, "", err
	}
	return c, packaging, nil
}
