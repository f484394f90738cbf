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
	"sort"
	"sync"
)

// StaticGraph is an in-memory DependencyGraph whose files are already
// present on the local filesystem. It is meant for embedding hosts that
// resolve graphs themselves, and for tests.
type StaticGraph struct {
	name       string
	resolution Resolution
	files      map[string]string

	mu          sync.Mutex
	resolutions int
	downloads   int
}

var _ DependencyGraph = &StaticGraph{}

// NewStaticGraph returns a graph with the given nodes in resolution order.
func NewStaticGraph(name string, nodes ...Node) *StaticGraph {
	return &StaticGraph{
		name:       name,
		resolution: Resolution{Nodes: nodes},
		files:      make(map[string]string),
	}
}

// WithFailure records a module that failed to resolve.
func (g *StaticGraph) WithFailure(id ModuleVersion, err error) *StaticGraph {
	g.resolution.Failures = append(g.resolution.Failures, Failure{Module: id, Err: err})
	return g
}

// WithFile maps a file of a component to a local path.
func (g *StaticGraph) WithFile(id ModuleVersion, fileName, localPath string) *StaticGraph {
	g.files[fileKey(id, fileName)] = localPath
	return g
}

// Name returns the name of the graph.
func (g *StaticGraph) Name() string {
	return g.name
}

// Resolve returns the static resolution.
func (g *StaticGraph) Resolve(ctx context.Context) (*Resolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.resolutions++
	g.mu.Unlock()
	res := Resolution{
		Nodes:    append([]Node(nil), g.resolution.Nodes...),
		Failures: append([]Failure(nil), g.resolution.Failures...),
	}
	return &res, nil
}

// Download returns the local path registered for the file.
func (g *StaticGraph) Download(ctx context.Context, id ModuleVersion, file File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	g.downloads++
	g.mu.Unlock()
	p, ok := g.files[fileKey(id, file.Name)]
	if !ok {
		return "", fmt.Errorf("%s of '%s': %w", file.Name, id, ErrArtifactNotFound)
	}
	return p, nil
}

// Resolutions returns how many times the graph was resolved.
func (g *StaticGraph) Resolutions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resolutions
}

// Downloads returns how many files were requested.
func (g *StaticGraph) Downloads() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.downloads
}

func fileKey(id ModuleVersion, fileName string) string {
	return id.String() + "/" + fileName
}

// MapRegistry is a Registry backed by a map of graphs.
type MapRegistry map[string]DependencyGraph

var _ Registry = MapRegistry{}

// Resolve returns the graph registered under the given name.
func (r MapRegistry) Resolve(name string) (DependencyGraph, error) {
	if g, ok := r[name]; ok {
		return g, nil
	}
	available := make([]string, 0, len(r))
	for n := range r {
		available = append(available, n)
	}
	sort.Strings(available)
	return nil, &ConfigurationNotFoundError{Name: name, Available: available}
}
