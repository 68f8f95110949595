package hierarchy

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"regexp"
	"strings"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/modelsource"
)

const (
	ScopeImport = "import"
	TypePom     = "pom"

	// maxInterpolationDepth bounds the expansion of properties referring to other properties.
	maxInterpolationDepth = 10
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Project is the part of a project model needed to discover its hierarchy.
type Project struct {
	// GroupID and Version are inherited from the parent declaration if not set.
	GroupID    string
	ArtifactID string
	Version    string
	Packaging  string
	Parent     *coordinate.Parent
	Properties map[string]string
	// Managed are the dependency management entries as declared, without interpolation.
	Managed []coordinate.Dependency
}

type pomXML struct {
	XMLName    xml.Name   `xml:"project"`
	GroupID    string     `xml:"groupId"`
	ArtifactID string     `xml:"artifactId"`
	Version    string     `xml:"version"`
	Packaging  string     `xml:"packaging"`
	Parent     *parentXML `xml:"parent"`
	Properties properties `xml:"properties"`
	Management struct {
		Dependencies []dependencyXML `xml:"dependencies>dependency"`
	} `xml:"dependencyManagement"`
}

type parentXML struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

type dependencyXML struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
	Scope      string `xml:"scope"`
}

// properties collects arbitrary child elements of <properties>.
type properties map[string]string

func (p *properties) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	*p = properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			return nil
		}
	}
}

// ReadProject parses a project model.
func ReadProject(r io.Reader) (*Project, error) {
	var pom pomXML
	if err := xml.NewDecoder(r).Decode(&pom); err != nil {
		return nil, fmt.Errorf("parsing project model failed: %w", err)
	}
	p := &Project{
		GroupID:    strings.TrimSpace(pom.GroupID),
		ArtifactID: strings.TrimSpace(pom.ArtifactID),
		Version:    strings.TrimSpace(pom.Version),
		Packaging:  strings.TrimSpace(pom.Packaging),
		Properties: map[string]string(pom.Properties),
	}
	if p.Properties == nil {
		p.Properties = map[string]string{}
	}
	if p.Packaging == "" {
		p.Packaging = "jar"
	}
	if pom.Parent != nil {
		p.Parent = &coordinate.Parent{
			GroupID:      strings.TrimSpace(pom.Parent.GroupID),
			ArtifactID:   strings.TrimSpace(pom.Parent.ArtifactID),
			Version:      strings.TrimSpace(pom.Parent.Version),
			RelativePath: strings.TrimSpace(pom.Parent.RelativePath),
		}
		if p.GroupID == "" {
			p.GroupID = p.Parent.GroupID
		}
		if p.Version == "" {
			p.Version = p.Parent.Version
		}
	}
	for _, dep := range pom.Management.Dependencies {
		p.Managed = append(p.Managed, coordinate.Dependency{
			GroupID:    strings.TrimSpace(dep.GroupID),
			ArtifactID: strings.TrimSpace(dep.ArtifactID),
			Version:    strings.TrimSpace(dep.Version),
			Type:       strings.TrimSpace(dep.Type),
			Classifier: strings.TrimSpace(dep.Classifier),
			Scope:      strings.TrimSpace(dep.Scope),
		})
	}
	return p, nil
}

// ReadSource parses the project model of a model source.
func ReadSource(src modelsource.ModelSource) (_ *Project, err error) {
	rc, err := src.ReadCloser()
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, rc.Close())
	}()
	p, err := ReadProject(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Location(), err)
	}
	return p, nil
}

// Coordinate returns the coordinate the model declares for itself.
func (p *Project) Coordinate() (coordinate.Coordinate, error) {
	return coordinate.New(p.GroupID, p.ArtifactID, p.Version)
}

// EffectiveProperties returns the properties visible in the model: the inherited properties
// of the parent hierarchy, overridden by the model's own properties and the project.* built-ins.
func (p *Project) EffectiveProperties(inherited map[string]string) map[string]string {
	props := maps.Clone(inherited)
	if props == nil {
		props = map[string]string{}
	}
	maps.Copy(props, p.Properties)
	props["project.groupId"] = p.GroupID
	props["project.artifactId"] = p.ArtifactID
	props["project.version"] = p.Version
	props["pom.version"] = p.Version
	if p.Parent != nil {
		props["project.parent.groupId"] = p.Parent.GroupID
		props["project.parent.artifactId"] = p.Parent.ArtifactID
		props["project.parent.version"] = p.Parent.Version
	}
	return props
}

// Imports returns the managed dependencies imported as bills of materials
// (scope "import", type "pom") with placeholders expanded from props.
// A field that still holds a placeholder after expansion is cleared, which makes
// the reference incomplete.
func (p *Project) Imports(props map[string]string) []coordinate.Dependency {
	var imports []coordinate.Dependency
	for _, dep := range p.Managed {
		if dep.Scope != ScopeImport || dep.Type != TypePom {
			continue
		}
		dep.GroupID = Interpolate(dep.GroupID, props)
		dep.ArtifactID = Interpolate(dep.ArtifactID, props)
		dep.Version = Interpolate(dep.Version, props)
		for _, field := range []*string{&dep.GroupID, &dep.ArtifactID, &dep.Version} {
			if strings.Contains(*field, "${") {
				*field = ""
			}
		}
		imports = append(imports, dep)
	}
	return imports
}

// Interpolate expands ${name} placeholders in s from props. Unknown placeholders are kept.
func Interpolate(s string, props map[string]string) string {
	for range maxInterpolationDepth {
		if !strings.Contains(s, "${") {
			return s
		}
		expanded := placeholder.ReplaceAllStringFunc(s, func(m string) string {
			if v, ok := props[m[2:len(m)-1]]; ok {
				return v
			}
			return m
		})
		if expanded == s {
			return s
		}
		s = expanded
	}
	return s
}
