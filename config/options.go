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

package config

import (
	"fmt"
	"time"

	kerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/fluxcd/docs-resolver/attribute"
	"github.com/fluxcd/docs-resolver/plugin"
	"github.com/fluxcd/docs-resolver/task"
)

// Options contains configuration settings for resolving the documentation
// artifacts of a project.
type Options struct {
	// ProjectFile is the path to the project descriptor.
	ProjectFile string `json:"projectFile"`

	// Configuration is the name of the dependency graph to resolve.
	Configuration string `json:"configuration"`

	// DocsType is the kind of documentation to resolve.
	DocsType string `json:"docsType"`

	// Destination is the directory the artifacts are copied into.
	// Empty means '<buildDir>/<docsType>'.
	Destination string `json:"destination,omitempty"`

	// CacheDir is the directory downloaded files are cached in.
	CacheDir string `json:"cacheDir"`

	// CacheTTL is the duration after which unused cached files are
	// garbage collected, zero to keep them forever.
	CacheTTL time.Duration `json:"cacheTTL"`

	// HTTPRetries is the number of retries of a failed HTTP request.
	HTTPRetries int `json:"httpRetries"`

	// MaxDownloadSize is the maximum size in bytes of a downloaded file,
	// -1 for unlimited.
	MaxDownloadSize int64 `json:"maxDownloadSize"`

	// Parallelism is the number of dependencies downloaded concurrently.
	Parallelism int `json:"parallelism"`

	// Staleness is the staleness policy, 'always' or 'auto'.
	Staleness string `json:"staleness"`

	// Prune removes files from the destination a run did not produce.
	Prune bool `json:"prune"`

	// Strict fails the run when a dependency has no documentation.
	Strict bool `json:"strict"`
}

// Validate checks the options for consistency.
func (o *Options) Validate() error {
	var errs []error
	if o.ProjectFile == "" {
		errs = append(errs, fmt.Errorf("project file must be set"))
	}
	if o.Configuration == "" {
		errs = append(errs, fmt.Errorf("configuration must be set"))
	}
	switch o.DocsType {
	case attribute.DocsTypeSources, attribute.DocsTypeJavadoc:
	default:
		errs = append(errs, fmt.Errorf("invalid docs type %q (must be one of: %q)", o.DocsType,
			[]string{attribute.DocsTypeSources, attribute.DocsTypeJavadoc}))
	}
	if o.CacheDir == "" {
		errs = append(errs, fmt.Errorf("cache dir must be set"))
	}
	if o.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache ttl must not be negative, got %s", o.CacheTTL))
	}
	if o.HTTPRetries < 0 {
		errs = append(errs, fmt.Errorf("http retries must not be negative, got %d", o.HTTPRetries))
	}
	if o.MaxDownloadSize == 0 || o.MaxDownloadSize < -1 {
		errs = append(errs, fmt.Errorf("max download size must be positive or -1, got %d", o.MaxDownloadSize))
	}
	if o.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be positive, got %d", o.Parallelism))
	}
	if _, err := task.ParseStalenessPolicy(o.Staleness); err != nil {
		errs = append(errs, err)
	}
	return kerrors.NewAggregate(errs)
}

// PluginOptions returns the task options the settings translate to.
func (o *Options) PluginOptions() (plugin.Options, error) {
	policy, err := task.ParseStalenessPolicy(o.Staleness)
	if err != nil {
		return plugin.Options{}, err
	}
	return plugin.Options{
		Configuration: o.Configuration,
		DocsType:      o.DocsType,
		Destination:   o.Destination,
		Policy:        policy,
		Prune:         o.Prune,
		Strict:        o.Strict,
		Parallelism:   o.Parallelism,
	}, nil
}
