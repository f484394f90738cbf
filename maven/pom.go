/*
Copyright 2026 The Flux authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package maven

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/fluxcd/docs-resolver/attribute"
	"github.com/fluxcd/docs-resolver/graph"
)

// POM is the subset of a Maven project object model needed to derive
// variants and dependencies.
type POM struct {
	XMLName              xml.Name        `xml:"project"`
	GroupID              string          `xml:"groupId"`
	ArtifactID           string          `xml:"artifactId"`
	Version              string          `xml:"version"`
	Packaging            string          `xml:"packaging"`
	Parent               *POMParent      `xml:"parent"`
	Properties           POMProperties   `xml:"properties"`
	Dependencies         []POMDependency `xml:"dependencies>dependency"`
	DependencyManagement []POMDependency `xml:"dependencyManagement>dependencies>dependency"`
}

// POMParent references the parent POM.
type POMParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// ModuleVersion returns the coordinates of the parent POM.
func (p POMParent) ModuleVersion() graph.ModuleVersion {
	return graph.ModuleVersion{Group: p.GroupID, Name: p.ArtifactID, Version: p.Version}
}

// POMDependency is a dependency declared in a POM.
type POMDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
	Optional   string `xml:"optional"`
}

// isImport reports whether the managed dependency imports the dependency
// management of a bill of materials.
func (d POMDependency) isImport() bool {
	return strings.TrimSpace(d.Scope) == "import" && strings.TrimSpace(d.Type) == "pom"
}

// POMProperties holds the free form <properties> of a POM.
type POMProperties map[string]string

// UnmarshalXML collects every child element as a property.
func (p *POMProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*p = POMProperties{}
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

// ParsePOM decodes a POM document.
func ParsePOM(b []byte) (*POM, error) {
	var p POM
	dec := xml.NewDecoder(bytes.NewReader(b))
	dec.Strict = false
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode pom: %w", err)
	}
	return &p, nil
}

// inherit fills what the POM does not declare from its parent: coordinates,
// properties and managed dependency versions.
func (p *POM) inherit(parent *POM) {
	if p.GroupID == "" {
		p.GroupID = parent.GroupID
	}
	if p.Version == "" {
		p.Version = parent.Version
	}
	if p.Properties == nil {
		p.Properties = POMProperties{}
	}
	for k, v := range parent.Properties {
		if _, ok := p.Properties[k]; !ok {
			p.Properties[k] = v
		}
	}
	managed := make(map[string]struct{}, len(p.DependencyManagement))
	for _, d := range p.DependencyManagement {
		managed[p.key(d)] = struct{}{}
	}
	for _, d := range parent.DependencyManagement {
		if _, ok := managed[p.key(d)]; !ok {
			p.DependencyManagement = append(p.DependencyManagement, d)
		}
	}
}

// imports returns the bills of materials imported by the dependency
// management section.
func (p *POM) imports() []graph.ModuleVersion {
	var boms []graph.ModuleVersion
	for _, d := range p.DependencyManagement {
		if !d.isImport() {
			continue
		}
		id := graph.ModuleVersion{
			Group:   p.interpolate(d.GroupID),
			Name:    p.interpolate(d.ArtifactID),
			Version: normalizeVersion(p.interpolate(d.Version)),
		}
		if id.Group == "" || id.Name == "" || id.Version == "" || strings.Contains(id.String(), "${") {
			continue
		}
		boms = append(boms, id)
	}
	return boms
}

// importManaged merges the dependency management of an imported bill of
// materials. Entries are interpolated against the bill of materials, and
// entries already managed by the POM take precedence.
func (p *POM) importManaged(bom *POM) {
	managed := make(map[string]struct{}, len(p.DependencyManagement))
	for _, d := range p.DependencyManagement {
		managed[p.key(d)] = struct{}{}
	}
	for _, d := range bom.DependencyManagement {
		if d.isImport() {
			continue
		}
		d.GroupID = bom.interpolate(d.GroupID)
		d.ArtifactID = bom.interpolate(d.ArtifactID)
		d.Version = bom.interpolate(d.Version)
		k := p.key(d)
		if _, ok := managed[k]; ok {
			continue
		}
		managed[k] = struct{}{}
		p.DependencyManagement = append(p.DependencyManagement, d)
	}
}

// key returns the interpolated 'group:artifact' of a dependency.
func (p *POM) key(d POMDependency) string {
	return p.interpolate(d.GroupID) + ":" + p.interpolate(d.ArtifactID)
}

var propertyRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolate replaces ${...} references with project coordinates and
// properties. Unknown references are left untouched.
func (p *POM) interpolate(s string) string {
	for i := 0; i < 5 && strings.Contains(s, "${"); i++ {
		s = propertyRef.ReplaceAllStringFunc(s, func(ref string) string {
			name := ref[2 : len(ref)-1]
			switch name {
			case "project.version", "pom.version", "version":
				return p.Version
			case "project.groupId", "pom.groupId", "groupId":
				return p.GroupID
			case "project.artifactId", "pom.artifactId", "artifactId":
				return p.ArtifactID
			case "project.parent.version", "parent.version":
				if p.Parent != nil {
					return p.Parent.Version
				}
			}
			if v, ok := p.Properties[name]; ok {
				return v
			}
			return ref
		})
	}
	return s
}

// managedVersion returns the version of a dependency from the dependency
// management section.
func (p *POM) managedVersion(d POMDependency) string {
	k := p.key(d)
	for _, m := range p.DependencyManagement {
		if !m.isImport() && p.key(m) == k {
			return m.Version
		}
	}
	return ""
}

// dependencies returns the resolved dependencies of the given scopes.
// Optional dependencies, classified artifacts and dependencies without a
// resolvable version are skipped.
func (p *POM) dependencies(scopes ...string) []graph.Dependency {
	allowed := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		allowed[s] = struct{}{}
	}
	var deps []graph.Dependency
	for _, d := range p.Dependencies {
		scope := strings.TrimSpace(d.Scope)
		if scope == "" {
			scope = "compile"
		}
		if _, ok := allowed[scope]; !ok {
			continue
		}
		if strings.TrimSpace(d.Optional) == "true" || d.Classifier != "" {
			continue
		}
		if d.Type != "" && d.Type != "jar" && d.Type != "bundle" {
			continue
		}
		version := d.Version
		if version == "" {
			version = p.managedVersion(d)
		}
		dep := graph.Dependency{
			Group:   p.interpolate(d.GroupID),
			Name:    p.interpolate(d.ArtifactID),
			Version: normalizeVersion(p.interpolate(version)),
		}
		if dep.Version == "" || strings.Contains(dep.Version, "${") {
			continue
		}
		deps = append(deps, dep)
	}
	return deps
}

// normalizeVersion turns a Maven version or soft range into a single
// version. Ranges resolve to their upper inclusive bound, or their lower
// bound when open ended.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || !strings.ContainsAny(v, "[(") {
		return v
	}
	inner := strings.Trim(v, "[]()")
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) == 1 {
		return strings.TrimSpace(parts[0])
	}
	lower, upper := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if upper != "" && strings.HasSuffix(v, "]") {
		return upper
	}
	return lower
}

// ToComponent derives the variants Gradle would derive for a POM-only
// module: the runtime and api library variants and the sources and javadoc
// documentation variants.
func (p *POM) ToComponent(id graph.ModuleVersion) *graph.Component {
	library := func(usage string) attribute.Container {
		return attribute.Of(
			string(attribute.Category), attribute.CategoryLibrary,
			string(attribute.Bundling), attribute.BundlingExternal,
			string(attribute.LibraryElements), attribute.LibraryElementsJar,
			string(attribute.Usage), usage,
		)
	}
	documentation := func(docsType string) attribute.Container {
		return attribute.Of(
			string(attribute.Category), attribute.CategoryDocumentation,
			string(attribute.Bundling), attribute.BundlingExternal,
			string(attribute.DocsType), docsType,
			string(attribute.Usage), attribute.UsageJavaRuntime,
		)
	}

	runtime := graph.Variant{
		Name:         "runtime",
		Attributes:   library(attribute.UsageJavaRuntime),
		Dependencies: p.dependencies("compile", "runtime"),
	}
	api := graph.Variant{
		Name:         "compile",
		Attributes:   library(attribute.UsageJavaAPI),
		Dependencies: p.dependencies("compile"),
	}

	packaging := strings.TrimSpace(p.Packaging)
	if packaging == "pom" {
		return &graph.Component{ID: id, Variants: []graph.Variant{runtime, api}}
	}

	ext := "jar"
	if packaging != "" && packaging != "jar" && packaging != "bundle" && packaging != "maven-plugin" {
		ext = packaging
	}
	jar := graph.File{Name: baseName(id) + "." + ext, URL: baseName(id) + "." + ext}
	runtime.Files = []graph.File{jar}
	api.Files = []graph.File{jar}

	docs := func(docsType string) graph.Variant {
		name := baseName(id) + "-" + docsType + ".jar"
		return graph.Variant{
			Name:       docsType,
			Attributes: documentation(docsType),
			Files:      []graph.File{{Name: name, URL: name}},
		}
	}

	return &graph.Component{
		ID: id,
		Variants: []graph.Variant{
			runtime,
			api,
			docs(attribute.DocsTypeSources),
			docs(attribute.DocsTypeJavadoc),
		},
	}
}
