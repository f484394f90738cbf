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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fluxcd/docs-resolver/attribute"
	"github.com/fluxcd/docs-resolver/graph"
)

// ModuleMetadata is the Gradle Module Metadata document published next to
// a module version as '<name>-<version>.module'.
type ModuleMetadata struct {
	FormatVersion string            `json:"formatVersion"`
	Component     MetadataComponent `json:"component"`
	Variants      []MetadataVariant `json:"variants"`
}

// MetadataComponent identifies the published component.
type MetadataComponent struct {
	Group   string `json:"group"`
	Module  string `json:"module"`
	Version string `json:"version"`
}

// MetadataVariant is a variant as published in Gradle Module Metadata.
type MetadataVariant struct {
	Name         string                 `json:"name"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	AvailableAt  *MetadataAvailableAt   `json:"available-at,omitempty"`
	Dependencies []MetadataDependency   `json:"dependencies,omitempty"`
	Files        []MetadataFile         `json:"files,omitempty"`
}

// MetadataAvailableAt points a variant to another module publishing it.
type MetadataAvailableAt struct {
	URL     string `json:"url"`
	Group   string `json:"group"`
	Module  string `json:"module"`
	Version string `json:"version"`
}

// MetadataDependency is a dependency declared by a variant.
type MetadataDependency struct {
	Group   string                `json:"group"`
	Module  string                `json:"module"`
	Version MetadataVersionConstr `json:"version"`
}

// MetadataVersionConstr is a rich version constraint.
type MetadataVersionConstr struct {
	Strictly string `json:"strictly,omitempty"`
	Requires string `json:"requires,omitempty"`
	Prefers  string `json:"prefers,omitempty"`
}

// Preferred returns the single version the constraint resolves to on its own.
func (c MetadataVersionConstr) Preferred() string {
	switch {
	case c.Strictly != "":
		return c.Strictly
	case c.Requires != "":
		return c.Requires
	default:
		return c.Prefers
	}
}

// MetadataFile is a file attached to a variant.
type MetadataFile struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Size   int64  `json:"size,omitempty"`
	SHA512 string `json:"sha512,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
	SHA1   string `json:"sha1,omitempty"`
	MD5    string `json:"md5,omitempty"`
}

// ParseModuleMetadata decodes a Gradle Module Metadata document.
func ParseModuleMetadata(b []byte) (*ModuleMetadata, error) {
	var m ModuleMetadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to decode module metadata: %w", err)
	}
	if m.FormatVersion == "" {
		return nil, fmt.Errorf("module metadata has no formatVersion")
	}
	if !strings.HasPrefix(m.FormatVersion, "1.") {
		return nil, fmt.Errorf("unsupported module metadata format version '%s'", m.FormatVersion)
	}
	return &m, nil
}

// ToComponent converts the metadata into a graph component.
// Variants published at another module are turned into a dependency on
// that module.
func (m *ModuleMetadata) ToComponent(id graph.ModuleVersion) *graph.Component {
	c := &graph.Component{ID: id}
	for _, mv := range m.Variants {
		v := graph.Variant{
			Name:       mv.Name,
			Attributes: attributesOf(mv.Attributes),
		}
		if mv.AvailableAt != nil {
			v.Dependencies = append(v.Dependencies, graph.Dependency{
				Group:   mv.AvailableAt.Group,
				Name:    mv.AvailableAt.Module,
				Version: mv.AvailableAt.Version,
			})
			c.Variants = append(c.Variants, v)
			continue
		}
		for _, d := range mv.Dependencies {
			v.Dependencies = append(v.Dependencies, graph.Dependency{
				Group:   d.Group,
				Name:    d.Module,
				Version: d.Version.Preferred(),
			})
		}
		for _, f := range mv.Files {
			v.Files = append(v.Files, graph.File{
				Name:    f.Name,
				URL:     f.URL,
				Size:    f.Size,
				Digests: digestsOf(f),
			})
		}
		c.Variants = append(c.Variants, v)
	}
	return c
}

func attributesOf(raw map[string]interface{}) attribute.Container {
	values := make(map[attribute.Attribute]string, len(raw))
	for k, v := range raw {
		values[attribute.Attribute(k)] = fmt.Sprint(v)
	}
	return attribute.New(values)
}

func digestsOf(f MetadataFile) map[string]string {
	d := make(map[string]string)
	for algo, value := range map[string]string{
		"sha512": f.SHA512,
		"sha256": f.SHA256,
		"sha1":   f.SHA1,
		"md5":    f.MD5,
	} {
		if value != "" {
			d[algo] = value
		}
	}
	if len(d) == 0 {
		return nil
	}
	return d
}
