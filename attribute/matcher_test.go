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

package attribute_test

import (
	"testing"

	"github.com/fluxcd/docs-resolver/attribute"

	. "github.com/onsi/gomega"
)

var (
	runtimeElements = attribute.Of(
		string(attribute.Category), attribute.CategoryLibrary,
		string(attribute.Bundling), attribute.BundlingExternal,
		string(attribute.LibraryElements), attribute.LibraryElementsJar,
		string(attribute.Usage), attribute.UsageJavaRuntime,
	)
	apiElements = attribute.Of(
		string(attribute.Category), attribute.CategoryLibrary,
		string(attribute.Bundling), attribute.BundlingExternal,
		string(attribute.LibraryElements), attribute.LibraryElementsJar,
		string(attribute.Usage), attribute.UsageJavaAPI,
	)
	sourcesElements = attribute.Of(
		string(attribute.Category), attribute.CategoryDocumentation,
		string(attribute.Bundling), attribute.BundlingExternal,
		string(attribute.DocsType), attribute.DocsTypeSources,
		string(attribute.Usage), attribute.UsageJavaRuntime,
	)
	javadocElements = attribute.Of(
		string(attribute.Category), attribute.CategoryDocumentation,
		string(attribute.Bundling), attribute.BundlingExternal,
		string(attribute.DocsType), attribute.DocsTypeJavadoc,
		string(attribute.Usage), attribute.UsageJavaRuntime,
	)
)

func TestContainer_Immutable(t *testing.T) {
	g := NewWithT(t)

	src := map[attribute.Attribute]string{attribute.Category: attribute.CategoryLibrary}
	c := attribute.New(src)
	src[attribute.Category] = attribute.CategoryDocumentation

	v, ok := c.Get(attribute.Category)
	g.Expect(ok).To(BeTrue())
	g.Expect(v).To(Equal(attribute.CategoryLibrary))

	d := c.With(attribute.Usage, attribute.UsageJavaRuntime)
	g.Expect(c.Has(attribute.Usage)).To(BeFalse())
	g.Expect(d.Has(attribute.Usage)).To(BeTrue())
	g.Expect(d.Len()).To(Equal(2))

	m := d.Map()
	m[attribute.Usage] = attribute.UsageJavaAPI
	v, _ = d.Get(attribute.Usage)
	g.Expect(v).To(Equal(attribute.UsageJavaRuntime))
}

func TestContainer_String(t *testing.T) {
	g := NewWithT(t)

	c := attribute.Of(string(attribute.Usage), attribute.UsageJavaRuntime, string(attribute.Category), attribute.CategoryLibrary)
	g.Expect(c.String()).To(Equal("{org.gradle.category=library, org.gradle.usage=java-runtime}"))
	g.Expect(attribute.Container{}.String()).To(Equal("{}"))
	g.Expect(attribute.Container{}.IsEmpty()).To(BeTrue())
}

func TestContainer_Merge(t *testing.T) {
	g := NewWithT(t)

	base := attribute.Of(string(attribute.Category), attribute.CategoryLibrary, string(attribute.Usage), attribute.UsageJavaAPI)
	merged := base.Merge(attribute.Of(string(attribute.Usage), attribute.UsageJavaRuntime))

	g.Expect(merged.Equal(attribute.Of(string(attribute.Category), attribute.CategoryLibrary, string(attribute.Usage), attribute.UsageJavaRuntime))).To(BeTrue())
	g.Expect(base.Equal(merged)).To(BeFalse())
}

func TestMatcher_Select(t *testing.T) {
	documentation := func(docsType string) attribute.Container {
		return attribute.Of(
			string(attribute.Category), attribute.CategoryDocumentation,
			string(attribute.Bundling), attribute.BundlingExternal,
			string(attribute.DocsType), docsType,
			string(attribute.Usage), attribute.UsageJavaRuntime,
		)
	}

	tests := []struct {
		name        string
		requested   attribute.Container
		candidates  []attribute.Container
		wantIndex   int
		wantOutcome attribute.MatchOutcome
	}{
		{
			name:        "selects the runtime variant of a library",
			requested:   attribute.Of(string(attribute.Category), attribute.CategoryLibrary, string(attribute.Usage), attribute.UsageJavaRuntime),
			candidates:  []attribute.Container{apiElements, runtimeElements, sourcesElements},
			wantIndex:   1,
			wantOutcome: attribute.Matched,
		},
		{
			name:        "selects the sources variant",
			requested:   documentation(attribute.DocsTypeSources),
			candidates:  []attribute.Container{apiElements, runtimeElements, javadocElements, sourcesElements},
			wantIndex:   3,
			wantOutcome: attribute.Matched,
		},
		{
			name:        "selects the javadoc variant",
			requested:   documentation(attribute.DocsTypeJavadoc),
			candidates:  []attribute.Container{apiElements, runtimeElements, javadocElements, sourcesElements},
			wantIndex:   2,
			wantOutcome: attribute.Matched,
		},
		{
			name:        "no documentation among binary variants",
			requested:   documentation(attribute.DocsTypeSources),
			candidates:  []attribute.Container{apiElements, runtimeElements},
			wantIndex:   -1,
			wantOutcome: attribute.NoMatch,
		},
		{
			name:        "api request accepts the runtime variant",
			requested:   attribute.Of(string(attribute.Category), attribute.CategoryLibrary, string(attribute.Usage), attribute.UsageJavaAPI),
			candidates:  []attribute.Container{runtimeElements},
			wantIndex:   0,
			wantOutcome: attribute.Matched,
		},
		{
			name:        "runtime request rejects the api variant",
			requested:   attribute.Of(string(attribute.Category), attribute.CategoryLibrary, string(attribute.Usage), attribute.UsageJavaRuntime),
			candidates:  []attribute.Container{apiElements},
			wantIndex:   -1,
			wantOutcome: attribute.NoMatch,
		},
		{
			name:        "identical candidates are ambiguous",
			requested:   documentation(attribute.DocsTypeSources),
			candidates:  []attribute.Container{sourcesElements, sourcesElements},
			wantIndex:   -1,
			wantOutcome: attribute.Ambiguous,
		},
		{
			name:      "fewer extra attributes win",
			requested: attribute.Of(string(attribute.Category), attribute.CategoryLibrary),
			candidates: []attribute.Container{
				attribute.Of(string(attribute.Category), attribute.CategoryLibrary, string(attribute.Usage), attribute.UsageJavaRuntime),
				attribute.Of(string(attribute.Category), attribute.CategoryLibrary),
			},
			wantIndex:   1,
			wantOutcome: attribute.Matched,
		},
		{
			name:        "empty candidate list",
			requested:   documentation(attribute.DocsTypeSources),
			candidates:  nil,
			wantIndex:   -1,
			wantOutcome: attribute.NoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			i, outcome := attribute.DefaultMatcher.Select(tt.requested, tt.candidates)
			g.Expect(outcome).To(Equal(tt.wantOutcome))
			g.Expect(i).To(Equal(tt.wantIndex))
		})
	}
}

func TestMatcher_Compatible(t *testing.T) {
	g := NewWithT(t)

	requested := attribute.Of(string(attribute.Category), attribute.CategoryDocumentation, string(attribute.DocsType), attribute.DocsTypeSources)
	g.Expect(attribute.DefaultMatcher.Compatible(requested, attribute.Of(string(attribute.Usage), attribute.UsageJavaRuntime))).To(BeTrue())
	g.Expect(attribute.DefaultMatcher.Compatible(requested, sourcesElements)).To(BeTrue())
	g.Expect(attribute.DefaultMatcher.Compatible(requested, javadocElements)).To(BeFalse())
}
