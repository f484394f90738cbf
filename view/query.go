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
	"fmt"

	"github.com/fluxcd/docs-resolver/attribute"
)

// Query describes which artifacts an ArtifactSet selects from a graph.
// A Query is immutable once constructed.
type Query struct {
	attributes  attribute.Container
	required    []attribute.Attribute
	lenient     bool
	reselection bool
	matcher     *attribute.Matcher
	parallelism int
}

// Option configures a Query.
type Option func(q *Query)

// WithAttribute requests the given attribute value.
func WithAttribute(key attribute.Attribute, value string) Option {
	return func(q *Query) {
		q.attributes = q.attributes.With(key, value)
	}
}

// WithAttributes requests all the given attribute values.
func WithAttributes(c attribute.Container) Option {
	return func(q *Query) {
		q.attributes = q.attributes.Merge(c)
	}
}

// WithRequiredAttributes restricts candidates to variants that declare
// every given attribute.
func WithRequiredAttributes(keys ...attribute.Attribute) Option {
	return func(q *Query) {
		q.required = append(q.required[:len(q.required):len(q.required)], keys...)
	}
}

// WithLenient makes unresolvable dependencies absent from the result
// instead of failing the whole set.
func WithLenient(lenient bool) Option {
	return func(q *Query) {
		q.lenient = lenient
	}
}

// WithVariantReselection lets the selection consider every variant of a
// component instead of only the one selected by the graph traversal.
func WithVariantReselection(reselect bool) Option {
	return func(q *Query) {
		q.reselection = reselect
	}
}

// WithMatcher sets the attribute matcher, attribute.DefaultMatcher otherwise.
func WithMatcher(m *attribute.Matcher) Option {
	return func(q *Query) {
		q.matcher = m
	}
}

// WithParallelism sets how many dependencies are resolved and downloaded
// concurrently. Values below one mean DefaultParallelism.
func WithParallelism(n int) Option {
	return func(q *Query) {
		q.parallelism = n
	}
}

// DefaultParallelism is the number of dependencies resolved concurrently
// when no parallelism is configured.
const DefaultParallelism = 4

// NewQuery returns a Query configured with the given options.
func NewQuery(opts ...Option) Query {
	q := Query{matcher: attribute.DefaultMatcher}
	for _, o := range opts {
		o(&q)
	}
	if q.matcher == nil {
		q.matcher = attribute.DefaultMatcher
	}
	if q.parallelism < 1 {
		q.parallelism = DefaultParallelism
	}
	return q
}

// DocumentationQuery returns the Query selecting the documentation of the
// given kind (e.g. 'sources' or 'javadoc') in the runtime lineage of every
// dependency. It is lenient and allows variant reselection; options are
// applied on top of these defaults.
func DocumentationQuery(docsKind string, opts ...Option) Query {
	defaults := []Option{
		WithAttribute(attribute.Category, attribute.CategoryDocumentation),
		WithAttribute(attribute.Bundling, attribute.BundlingExternal),
		WithAttribute(attribute.DocsType, docsKind),
		WithAttribute(attribute.Usage, attribute.UsageJavaRuntime),
		WithRequiredAttributes(attribute.Category, attribute.Bundling, attribute.DocsType),
		WithLenient(true),
		WithVariantReselection(true),
	}
	return NewQuery(append(defaults, opts...)...)
}

// Attributes returns the requested attribute values.
func (q Query) Attributes() attribute.Container {
	return q.attributes
}

// Lenient reports whether unresolvable dependencies are skipped.
func (q Query) Lenient() bool {
	return q.lenient
}

// VariantReselection reports whether all variants of a component are candidates.
func (q Query) VariantReselection() bool {
	return q.reselection
}

// Parallelism returns the number of dependencies resolved concurrently.
func (q Query) Parallelism() int {
	return q.parallelism
}

// String implements the fmt.Stringer interface for Query.
func (q Query) String() string {
	return fmt.Sprintf("%s lenient=%t reselection=%t", q.attributes, q.lenient, q.reselection)
}

func (q Query) declaresRequired(c attribute.Container) bool {
	for _, k := range q.required {
		if !c.Has(k) {
			return false
		}
	}
	return true
}
