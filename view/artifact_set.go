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

package view

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	kerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/fluxcd/docs-resolver/attribute"
	"github.com/fluxcd/docs-resolver/graph"
)

// ResultKind tells whether a dependency contributed artifacts.
type ResultKind int

const (
	// Absent means the dependency contributed no artifact.
	Absent ResultKind = iota
	// Found means at least one artifact was resolved for the dependency.
	Found
)

func (k ResultKind) String() string {
	if k == Found {
		return "found"
	}
	return "absent"
}

// File is a resolved artifact available on the local filesystem.
type File struct {
	// Component is the module version the file belongs to.
	Component graph.ModuleVersion
	// Name is the published file name.
	Name string
	// Path is the local path of the file.
	Path string
}

// Result is the outcome of the selection for a single dependency.
type Result struct {
	Component graph.ModuleVersion
	Kind      ResultKind
	// Variant is the name of the matched variant, if any.
	Variant string
	Files   []File
	// Reason explains an Absent result, or a partially resolved Found one.
	Reason error
}

// ArtifactSet is a lazily evaluated set of artifacts selected from a
// dependency graph by a Query. Nothing is resolved until Results or Files
// is called, and every call evaluates the graph again.
type ArtifactSet struct {
	graph graph.DependencyGraph
	query Query
}

// New returns the ArtifactSet selecting artifacts of g with q.
func New(g graph.DependencyGraph, q Query) *ArtifactSet {
	return &ArtifactSet{graph: g, query: q}
}

// Build returns the lenient, reselecting ArtifactSet of the documentation
// of the given kind for every dependency in g.
func Build(g graph.DependencyGraph, docsKind string, opts ...Option) *ArtifactSet {
	return New(g, DocumentationQuery(docsKind, opts...))
}

// Graph returns the graph the set selects from.
func (s *ArtifactSet) Graph() graph.DependencyGraph {
	return s.graph
}

// Query returns the query of the set.
func (s *ArtifactSet) Query() Query {
	return s.query
}

// Files resolves the set and returns the files of all Found results, in
// resolution order.
func (s *ArtifactSet) Files(ctx context.Context) ([]File, error) {
	results, err := s.Results(ctx)
	if err != nil {
		return nil, err
	}
	var files []File
	for _, r := range results {
		files = append(files, r.Files...)
	}
	return files, nil
}

// Results resolves the set and returns one Result per dependency.
// A lenient set never fails because of a single dependency; a strict one
// returns an aggregate of all per dependency failures.
func (s *ArtifactSet) Results(ctx context.Context) ([]Result, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("configuration", s.graph.Name())

	res, err := s.graph.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s': %w", s.graph.Name(), err)
	}

	var (
		results []Result
		errs    []error
	)
	for _, f := range res.Failures {
		results = append(results, Result{Component: f.Module, Kind: Absent, Reason: f.Err})
		errs = append(errs, fmt.Errorf("'%s': %w", f.Module, f.Err))
	}

	nodes, err := s.resolveNodes(ctx, res.Nodes)
	if err != nil {
		return nil, err
	}
	for _, r := range nodes {
		if r.Reason != nil {
			errs = append(errs, fmt.Errorf("'%s': %w", r.Component, r.Reason))
		}
		results = append(results, r)
	}

	if !s.query.lenient && len(errs) > 0 {
		return nil, kerrors.NewAggregate(errs)
	}

	for _, r := range results {
		if r.Reason != nil {
			log.V(1).Info("skipping unresolved artifact", "component", r.Component.String(), "result", r.Kind.String(), "reason", r.Reason.Error())
		}
	}
	return results, nil
}

// resolveNodes resolves the nodes concurrently, bounded by the query
// parallelism. The results keep the order of the nodes. Only a cancelled
// context fails the whole resolution.
func (s *ArtifactSet) resolveNodes(ctx context.Context, nodes []graph.Node) ([]Result, error) {
	slots := make([]*Result, len(nodes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.query.parallelism)
	for i, node := range nodes {
		if node.Component == nil {
			continue
		}
		g.Go(func() error {
			r, err := s.resolveNode(gctx, node)
			if err != nil {
				return err
			}
			slots[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(nodes))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

func (s *ArtifactSet) candidates(node graph.Node) []graph.Variant {
	if !s.query.reselection {
		v, ok := node.SelectedVariant()
		if !ok {
			return nil
		}
		return []graph.Variant{v}
	}
	return node.Component.Variants
}

func (s *ArtifactSet) resolveNode(ctx context.Context, node graph.Node) (Result, error) {
	id := node.Component.ID
	result := Result{Component: id, Kind: Absent}

	var (
		variants   []graph.Variant
		containers []attribute.Container
		names      []string
	)
	for _, v := range s.candidates(node) {
		names = append(names, v.Name)
		if !s.query.declaresRequired(v.Attributes) {
			continue
		}
		variants = append(variants, v)
		containers = append(containers, v.Attributes)
	}

	i, outcome := s.query.matcher.Select(s.query.attributes, containers)
	if outcome != attribute.Matched {
		result.Reason = &attribute.MatchError{Requested: s.query.attributes, Outcome: outcome, Candidates: names}
		return result, nil
	}
	variant := variants[i]
	result.Variant = variant.Name
	if len(variant.Files) == 0 {
		result.Reason = fmt.Errorf("variant '%s' has no files", variant.Name)
		return result, nil
	}

	var errs []error
	for _, f := range variant.Files {
		if !validFileName(f.Name) {
			errs = append(errs, fmt.Errorf("variant '%s' publishes a file with the invalid name %q", variant.Name, f.Name))
			continue
		}
		p, err := s.graph.Download(ctx, id, f)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			errs = append(errs, err)
			continue
		}
		result.Files = append(result.Files, File{Component: id, Name: f.Name, Path: p})
	}
	if len(result.Files) > 0 {
		result.Kind = Found
	}
	if len(errs) > 0 {
		result.Reason = kerrors.NewAggregate(errs)
	}
	return result, nil
}

// validFileName reports whether the published file name designates a file
// that can be copied under its base name.
func validFileName(name string) bool {
	if strings.TrimSpace(name) == "" || strings.ContainsRune(name, '\\') {
		return false
	}
	switch path.Base(name) {
	case ".", "..", "/":
		return false
	}
	return true
}
