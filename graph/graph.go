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

package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/fluxcd/docs-resolver/attribute"
)

// ModuleVersion identifies a published module version.
type ModuleVersion struct {
	Group   string `json:"group"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ParseModuleVersion parses a 'group:name:version' notation.
func ParseModuleVersion(s string) (ModuleVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return ModuleVersion{}, fmt.Errorf("invalid module notation %q: expected 'group:name:version'", s)
	}
	for _, p := range parts {
		if p == "" {
			return ModuleVersion{}, fmt.Errorf("invalid module notation %q: empty segment", s)
		}
	}
	return ModuleVersion{Group: parts[0], Name: parts[1], Version: parts[2]}, nil
}

// Module returns the 'group:name' part of the identifier.
func (m ModuleVersion) Module() string {
	return m.Group + ":" + m.Name
}

// String implements the fmt.Stringer interface for ModuleVersion.
func (m ModuleVersion) String() string {
	return fmt.Sprintf("%s:%s:%s", m.Group, m.Name, m.Version)
}

// Dependency is a request for a module, as declared by a variant or a configuration.
type Dependency struct {
	Group   string `json:"group"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Module returns the 'group:name' part of the dependency.
func (d Dependency) Module() string {
	return d.Group + ":" + d.Name
}

// ModuleVersion returns the requested module version.
func (d Dependency) ModuleVersion() ModuleVersion {
	return ModuleVersion{Group: d.Group, Name: d.Name, Version: d.Version}
}

// File is a single artifact attached to a variant.
type File struct {
	// Name is the file name the artifact is published under.
	Name string `json:"name"`

	// URL is the location of the file relative to the module version directory.
	URL string `json:"url"`

	// Size is the advertised size in bytes, zero when unknown.
	Size int64 `json:"size,omitempty"`

	// Digests holds the advertised checksums keyed by algorithm (sha256, sha1, ...).
	Digests map[string]string `json:"digests,omitempty"`
}

// Variant is one representation of a component, distinguished by its attributes.
type Variant struct {
	Name         string
	Attributes   attribute.Container
	Files        []File
	Dependencies []Dependency
}

// Component is a resolved module version and all its published variants.
type Component struct {
	ID       ModuleVersion
	Variants []Variant
}

// Variant returns the variant with the given name.
func (c *Component) Variant(name string) (Variant, bool) {
	for _, v := range c.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantNames returns the names of all variants, in declaration order.
func (c *Component) VariantNames() []string {
	names := make([]string, 0, len(c.Variants))
	for _, v := range c.Variants {
		names = append(names, v.Name)
	}
	return names
}

// Node is a component in a resolved graph together with the variant
// selected for it by the graph traversal.
type Node struct {
	Component *Component
	Selected  string
}

// SelectedVariant returns the variant chosen by the traversal.
func (n Node) SelectedVariant() (Variant, bool) {
	if n.Component == nil {
		return Variant{}, false
	}
	return n.Component.Variant(n.Selected)
}

// Failure records a module that could not be resolved in the graph.
type Failure struct {
	Module ModuleVersion
	Err    error
}

// Resolution is the result of resolving a dependency graph.
// Nodes are in resolution order.
type Resolution struct {
	Nodes    []Node
	Failures []Failure
}

// DependencyGraph is a resolvable set of components, owned by the host.
type DependencyGraph interface {
	// Name returns the configuration name the graph was resolved from.
	Name() string

	// Resolve performs (or returns the memoized) graph resolution.
	// Per module failures are reported in Resolution.Failures; the error is
	// reserved for failures that prevent any resolution at all.
	Resolve(ctx context.Context) (*Resolution, error)

	// Download makes the given file of a component available locally and
	// returns its path. It returns an error wrapping ErrArtifactNotFound
	// when the file does not exist upstream.
	Download(ctx context.Context, id ModuleVersion, file File) (string, error)
}

// Registry gives access to the dependency graphs of a project by name.
type Registry interface {
	// Resolve returns the graph registered under name, or a
	// *ConfigurationNotFoundError.
	Resolve(name string) (DependencyGraph, error)
}
