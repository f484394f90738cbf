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

	"github.com/go-logr/logr"

	"github.com/fluxcd/docs-resolver/attribute"
	"github.com/fluxcd/docs-resolver/graph"
	"github.com/fluxcd/docs-resolver/version"
)

// maxPasses bounds the number of traversals needed to settle the
// selected versions.
const maxPasses = 64

// configurationGraph is the dependency graph of a configuration.
type configurationGraph struct {
	name       string
	project    *Project
	attributes attribute.Container
	roots      []graph.Dependency

	mu         sync.Mutex
	resolution *graph.Resolution
}

// Name implements graph.DependencyGraph.
func (g *configurationGraph) Name() string {
	return g.name
}

// Download implements graph.DependencyGraph.
func (g *configurationGraph) Download(ctx context.Context, id graph.ModuleVersion, file graph.File) (string, error) {
	return g.project.source.Download(ctx, id, file)
}

// Resolve walks the dependencies breadth first, selecting one version per
// module. When a module is requested with several versions the highest
// one wins, and the walk is repeated until the selection is stable.
// The resolution is memoized once it completes.
func (g *configurationGraph) Resolve(ctx context.Context) (*graph.Resolution, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolution != nil {
		return g.resolution, nil
	}

	log := logr.FromContextOrDiscard(ctx).WithValues("configuration", g.name)

	selected := make(map[string]string)
	for _, d := range g.roots {
		selected[d.Module()] = version.Highest(selected[d.Module()], d.Version)
	}

	for pass := 1; pass <= maxPasses; pass++ {
		res, changed, err := g.traverse(ctx, selected)
		if err != nil {
			return nil, err
		}
		if !changed {
			log.V(1).Info("resolved configuration", "modules", len(res.Nodes), "failures", len(res.Failures), "passes", pass)
			g.resolution = res
			return res, nil
		}
	}
	return nil, fmt.Errorf("configuration '%s': selected versions did not settle after %d passes", g.name, maxPasses)
}

// traverse performs one breadth first walk with the currently selected
// versions. It raises the selected version of a module when a higher one
// is requested, and reports whether it did.
func (g *configurationGraph) traverse(ctx context.Context, selected map[string]string) (*graph.Resolution, bool, error) {
	res := &graph.Resolution{}
	changed := false
	visited := make(map[string]struct{})

	queue := make([]graph.Dependency, len(g.roots))
	copy(queue, g.roots)

	for len(queue) > 0 {
		dep := queue[0]
		queue = queue[1:]

		module := dep.Module()
		if _, ok := visited[module]; ok {
			continue
		}
		visited[module] = struct{}{}

		id := graph.ModuleVersion{Group: dep.Group, Name: dep.Name, Version: selected[module]}
		c, err := g.project.component(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, false, ctx.Err()
			}
			res.Failures = append(res.Failures, graph.Failure{Module: id, Err: err})
			continue
		}

		candidates := make([]attribute.Container, len(c.Variants))
		for i, v := range c.Variants {
			candidates[i] = v.Attributes
		}
		i, outcome := g.project.matcher.Select(g.attributes, candidates)
		if outcome != attribute.Matched {
			res.Failures = append(res.Failures, graph.Failure{
				Module: id,
				Err:    &attribute.MatchError{Requested: g.attributes, Outcome: outcome, Candidates: c.VariantNames()},
			})
			continue
		}
		variant := c.Variants[i]
		res.Nodes = append(res.Nodes, graph.Node{Component: c, Selected: variant.Name})

		for _, next := range variant.Dependencies {
			m := next.Module()
			current, ok := selected[m]
			switch {
			case !ok:
				selected[m] = next.Version
			case version.Compare(next.Version, current) > 0:
				selected[m] = next.Version
				if _, seen := visited[m]; seen {
					changed = true
				}
			}
			queue = append(queue, next)
		}
	}
	return res, changed, nil
}
