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
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kerrors "k8s.io/apimachinery/pkg/util/errors"
	"sigs.k8s.io/yaml"

	"github.com/fluxcd/docs-resolver/attribute"
	"github.com/fluxcd/docs-resolver/graph"
	"github.com/fluxcd/docs-resolver/maven"
)

const (
	// DefaultBuildDir is the build directory used when the descriptor
	// does not declare one.
	DefaultBuildDir = "build"

	// RuntimeClasspath is the name of the configuration holding the
	// runtime dependencies of a project.
	RuntimeClasspath = "runtimeClasspath"
)

// DefaultAttributes are the attributes of a configuration that does not
// declare any.
var DefaultAttributes = attribute.Of(
	string(attribute.Category), attribute.CategoryLibrary,
	string(attribute.Usage), attribute.UsageJavaRuntime,
	string(attribute.Bundling), attribute.BundlingExternal,
)

// Descriptor is the YAML project descriptor.
type Descriptor struct {
	// Name of the project.
	Name string `json:"name"`

	// BuildDir is the build directory, relative to the descriptor.
	// +optional
	BuildDir string `json:"buildDir,omitempty"`

	// Repositories are searched in order for module metadata.
	Repositories []RepositoryDescriptor `json:"repositories,omitempty"`

	// Configurations are the named dependency buckets of the project.
	Configurations map[string]ConfigurationDescriptor `json:"configurations,omitempty"`

	// Dir is the directory the descriptor was loaded from.
	Dir string `json:"-"`
}

// RepositoryDescriptor declares a Maven repository.
type RepositoryDescriptor struct {
	Name string `json:"name"`
	URL  string `json:"url"`

	// Username for basic auth.
	// +optional
	Username string `json:"username,omitempty"`

	// PasswordEnv is the name of the environment variable holding the
	// basic auth password.
	// +optional
	PasswordEnv string `json:"passwordEnv,omitempty"`
}

// ConfigurationDescriptor declares a configuration.
type ConfigurationDescriptor struct {
	// Dependencies are 'group:name:version' coordinates.
	Dependencies []string `json:"dependencies,omitempty"`

	// ExtendsFrom lists the configurations whose dependencies are
	// inherited.
	ExtendsFrom []string `json:"extendsFrom,omitempty"`

	// Attributes requested when selecting the variant of each
	// dependency. DefaultAttributes apply when empty.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Load reads and validates the descriptor at the given path.
func Load(path string) (*Descriptor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project descriptor: %w", err)
	}
	d, err := ParseDescriptor(b)
	if err != nil {
		return nil, fmt.Errorf("invalid project descriptor '%s': %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	d.Dir = filepath.Dir(abs)
	return d, nil
}

// ParseDescriptor decodes and validates a YAML descriptor. Unknown fields
// are rejected.
func ParseDescriptor(b []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.UnmarshalStrict(b, &d); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the repositories, the dependency coordinates and that
// the extendsFrom references exist and do not form a cycle.
func (d *Descriptor) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, fmt.Errorf("project name must be set"))
	}
	for _, r := range d.Repositories {
		if err := (maven.Repository{Name: r.Name, URL: r.URL}).Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range d.ConfigurationNames() {
		c := d.Configurations[name]
		for _, dep := range c.Dependencies {
			if _, err := graph.ParseModuleVersion(dep); err != nil {
				errs = append(errs, fmt.Errorf("configuration '%s': %w", name, err))
			}
		}
		for _, parent := range c.ExtendsFrom {
			if _, ok := d.Configurations[parent]; !ok {
				errs = append(errs, fmt.Errorf("configuration '%s' extends unknown configuration '%s'", name, parent))
			}
		}
		if err := d.checkCycle(name, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return kerrors.NewAggregate(errs)
}

func (d *Descriptor) checkCycle(name string, path []string) error {
	for _, p := range path {
		if p == name {
			return fmt.Errorf("configuration '%s' extends itself through %v", name, path)
		}
	}
	path = append(path, name)
	for _, parent := range d.Configurations[name].ExtendsFrom {
		if _, ok := d.Configurations[parent]; !ok {
			continue
		}
		if err := d.checkCycle(parent, path); err != nil {
			return err
		}
	}
	return nil
}

// ConfigurationNames returns the declared configuration names, sorted.
func (d *Descriptor) ConfigurationNames() []string {
	names := make([]string, 0, len(d.Configurations))
	for name := range d.Configurations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildPath returns the absolute build directory of the project.
func (d *Descriptor) BuildPath() string {
	dir := d.BuildDir
	if dir == "" {
		dir = DefaultBuildDir
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(d.Dir, dir)
}

// MavenRepositories returns the repositories with their passwords read
// from the environment.
func (d *Descriptor) MavenRepositories() ([]maven.Repository, error) {
	repos := make([]maven.Repository, 0, len(d.Repositories))
	for _, r := range d.Repositories {
		repo := maven.Repository{Name: r.Name, URL: r.URL, Username: r.Username}
		if r.PasswordEnv != "" {
			password, ok := os.LookupEnv(r.PasswordEnv)
			if !ok {
				return nil, fmt.Errorf("repository '%s': environment variable '%s' is not set", r.Name, r.PasswordEnv)
			}
			repo.Password = password
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// dependencies returns the dependencies of the configuration and of the
// configurations it extends, own dependencies first, without duplicates.
func (d *Descriptor) dependencies(name string) []graph.Dependency {
	var deps []graph.Dependency
	seen := make(map[string]struct{})
	visited := make(map[string]struct{})

	var walk func(string)
	walk = func(name string) {
		if _, ok := visited[name]; ok {
			return
		}
		visited[name] = struct{}{}
		c := d.Configurations[name]
		for _, s := range c.Dependencies {
			id, err := graph.ParseModuleVersion(s)
			if err != nil {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			deps = append(deps, graph.Dependency{Group: id.Group, Name: id.Name, Version: id.Version})
		}
		for _, parent := range c.ExtendsFrom {
			walk(parent)
		}
	}
	walk(name)
	return deps
}

// attributes returns the requested attributes of the configuration.
func (d *Descriptor) attributes(name string) attribute.Container {
	c := d.Configurations[name]
	if len(c.Attributes) == 0 {
		return DefaultAttributes
	}
	values := make(map[attribute.Attribute]string, len(c.Attributes))
	for k, v := range c.Attributes {
		values[attribute.Attribute(k)] = v
	}
	return attribute.New(values)
}
