package runtime

import (
	"fmt"
	"strings"
)

// Type is a versioned type in the form "<kind>/<version>", for example
// "resolver.config.gradle-dependency-export/v1". The version may be omitted.
type Type string

func NewVersionedType(kind, version string) Type {
	return Type(kind + "/" + version)
}

// Parse validates a type string. Types with more than one separator or
// empty segments are rejected.
func Parse(typ string) (Type, error) {
	kind, version, versioned := strings.Cut(typ, "/")
	switch {
	case kind == "":
		return "", fmt.Errorf("invalid type %q, missing kind", typ)
	case versioned && version == "":
		return "", fmt.Errorf("invalid type %q, missing version", typ)
	case strings.Contains(version, "/"):
		return "", fmt.Errorf("invalid type %q, not exactly kind+version", typ)
	}
	return Type(typ), nil
}

func (t Type) Equal(other Type) bool {
	return t == other
}

func (t Type) String() string {
	return string(t)
}

func (t Type) GetKind() string {
	kind, _, _ := strings.Cut(string(t), "/")
	return kind
}

func (t Type) GetVersion() string {
	_, version, _ := strings.Cut(string(t), "/")
	return version
}

// HasVersion reports whether the type carries a version segment.
func (t Type) HasVersion() bool {
	return t.GetVersion() != ""
}
