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
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/fluxcd/docs-resolver/graph"
)

// Repository is a Maven layout repository reachable over HTTP(S).
type Repository struct {
	// Name identifies the repository in logs and errors.
	Name string `json:"name"`

	// URL is the base URL of the repository.
	URL string `json:"url"`

	// Username and Password are the optional basic auth credentials.
	Username string `json:"username,omitempty"`
	Password string `json:"-"`
}

// Validate checks that the repository has a name and an absolute http(s) URL.
func (r Repository) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("repository name must be set")
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("repository '%s' has an invalid url: %w", r.Name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("repository '%s' url must use http or https, got '%s'", r.Name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("repository '%s' url has no host", r.Name)
	}
	return nil
}

// ModuleDirURL returns the URL of the directory holding all files of the
// module version, in the form '<url>/<group as path>/<name>/<version>'.
func (r Repository) ModuleDirURL(id graph.ModuleVersion) string {
	return strings.TrimRight(r.URL, "/") + "/" + path.Join(strings.ReplaceAll(id.Group, ".", "/"), id.Name, id.Version)
}

// FileURL returns the URL of a file relative to the module version dir.
func (r Repository) FileURL(id graph.ModuleVersion, rel string) string {
	return r.ModuleDirURL(id) + "/" + strings.TrimLeft(rel, "/")
}

// baseName returns the '<name>-<version>' prefix of the module files.
func baseName(id graph.ModuleVersion) string {
	return id.Name + "-" + id.Version
}
