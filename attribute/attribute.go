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

package attribute

import (
	"fmt"
	"sort"
	"strings"
)

// Attribute is the name of a variant attribute, as published in
// Gradle Module Metadata.
type Attribute string

const (
	// Category distinguishes libraries from documentation, platforms, etc.
	Category Attribute = "org.gradle.category"
	// Bundling tells how the dependencies of a variant are packaged.
	Bundling Attribute = "org.gradle.dependency.bundling"
	// DocsType is the kind of documentation a variant carries.
	DocsType Attribute = "org.gradle.docstype"
	// Usage selects between the api and the runtime lineage of a library.
	Usage Attribute = "org.gradle.usage"
	// LibraryElements describes the content of a library variant.
	LibraryElements Attribute = "org.gradle.libraryelements"
)

const (
	CategoryLibrary       = "library"
	CategoryDocumentation = "documentation"
	CategoryPlatform      = "platform"

	BundlingExternal = "external"
	BundlingEmbedded = "embedded"
	BundlingShadowed = "shadowed"

	DocsTypeSources = "sources"
	DocsTypeJavadoc = "javadoc"

	UsageJavaRuntime = "java-runtime"
	UsageJavaAPI     = "java-api"

	LibraryElementsJar = "jar"
)

// Container is an immutable set of attribute values.
// The zero value is an empty container.
type Container struct {
	values map[Attribute]string
}

// New returns a Container holding a copy of the given values.
func New(values map[Attribute]string) Container {
	c := Container{values: make(map[Attribute]string, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// Of returns a Container from alternating attribute names and values.
// It panics on an odd number of arguments.
func Of(kv ...string) Container {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("attribute.Of: odd number of arguments: %d", len(kv)))
	}
	c := Container{values: make(map[Attribute]string, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		c.values[Attribute(kv[i])] = kv[i+1]
	}
	return c
}

// Get returns the value of the given attribute and whether it is set.
func (c Container) Get(key Attribute) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether the given attribute is set.
func (c Container) Has(key Attribute) bool {
	_, ok := c.values[key]
	return ok
}

// Len returns the number of attributes in the container.
func (c Container) Len() int {
	return len(c.values)
}

// IsEmpty reports whether the container holds no attributes.
func (c Container) IsEmpty() bool {
	return len(c.values) == 0
}

// With returns a copy of the container with the given attribute set.
func (c Container) With(key Attribute, value string) Container {
	n := New(c.values)
	n.values[key] = value
	return n
}

// Merge returns a copy of the container overlaid with the values of other.
func (c Container) Merge(other Container) Container {
	n := New(c.values)
	for k, v := range other.values {
		n.values[k] = v
	}
	return n
}

// Keys returns the attribute names in lexical order.
func (c Container) Keys() []Attribute {
	keys := make([]Attribute, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Map returns a copy of the underlying values.
func (c Container) Map() map[Attribute]string {
	m := make(map[Attribute]string, len(c.values))
	for k, v := range c.values {
		m[k] = v
	}
	return m
}

// Equal reports whether both containers hold the same values.
func (c Container) Equal(other Container) bool {
	if len(c.values) != len(other.values) {
		return false
	}
	for k, v := range c.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String implements the fmt.Stringer interface for Container.
func (c Container) String() string {
	parts := make([]string, 0, len(c.values))
	for _, k := range c.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%s", k, c.values[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
