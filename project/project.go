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

package project

import (
	"context"
	"fmt"
	"sync"

	"github.com/fluxcd/docs-resolver/attribute"
	"github.com/fluxcd/docs-resolver/graph"
)

// ModuleSource provides the published metadata and files of module
// versions. *maven.Client implements it.
type ModuleSource interface {
	Metadata(ctx context.Context, id graph.ModuleVersion) (*graph.Component, error)
	Download(ctx context.Context, id graph.ModuleVersion, file graph.File) (string, error)
}

// Project resolves the configurations of a descriptor against a module
// source. It implements graph.Registry.
type Project struct {
	descriptor *Descriptor
	source     ModuleSource
	matcher    *attribute.Matcher

	mu         sync.Mutex
	graphs     map[string]*configurationGraph
	components map[graph.ModuleVersion]*graph.Component
}

// Option configures a Project.
type Option func(p *Project)

// WithMatcher sets the matcher selecting the variant of each dependency.
func WithMatcher(m *attribute.Matcher) Option {
	return func(p *Project) { p.matcher = m }
}

// New returns a project for the given descriptor.
func New(d *Descriptor, source ModuleSource, opts ...Option) (*Project, error) {
	if d == nil {
		return nil, fmt.Errorf("project descriptor must be set")
	}
	if source == nil {
		return nil, fmt.Errorf("module source must be set")
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project descriptor: %w", err)
	}
	p := &Project{
		descriptor: d,
		source:     source,
		matcher:    attribute.DefaultMatcher,
		graphs:     make(map[string]*configurationGraph),
		components: make(map[graph.ModuleVersion]*graph.Component),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name returns the project name.
func (p *Project) Name() string {
	return p.descriptor.Name
}

// BuildDir returns the absolute build directory.
func (p *Project) BuildDir() string {
	return p.descriptor.BuildPath()
}

// Descriptor returns the project descriptor.
func (p *Project) Descriptor() *Descriptor {
	return p.descriptor
}

// Resolve returns the dependency graph of the named configuration. The
// same graph is returned for every call with the same name. It returns a
// *graph.ConfigurationNotFoundError for an unknown name.
func (p *Project) Resolve(name string) (graph.DependencyGraph, error) {
	if _, ok := p.descriptor.Configurations[name]; !ok {
		return nil, &graph.ConfigurationNotFoundError{Name: name, Available: p.descriptor.ConfigurationNames()}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.graphs[name]; ok {
		return g, nil
	}
	g := &configurationGraph{
		name:       name,
		project:    p,
		attributes: p.descriptor.attributes(name),
		roots:      p.descriptor.dependencies(name),
	}
	p.graphs[name] = g
	return g, nil
}

// component returns the memoized metadata of the module version.
func (p *Project) component(ctx context.Context, id graph.ModuleVersion) (*graph.Component, error) {
	p.mu.Lock()
	c, ok := p.components[id]
	p.mu.Unlock()
	if ok {
		return c, nil
	}

	c, err := p.source.Metadata(ctx, id)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.components[id] = c
	p.mu.Unlock()
	return c, nil
}
