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
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/fluxcd/docs-resolver/attribute"
	"github.com/fluxcd/docs-resolver/maven"
	"github.com/fluxcd/docs-resolver/project"
	"github.com/fluxcd/docs-resolver/view"
)

const (
	flagProjectFile    = "project-file"
	envProjectFile     = "DOCS_RESOLVER_PROJECT"
	defaultProjectFile = "project.yaml"

	flagConfiguration = "configuration"

	flagDocsType = "docs-type"

	flagDestination = "destination"

	flagCacheDir = "cache-dir"
	envCacheDir  = "DOCS_RESOLVER_CACHE"

	flagCacheTTL = "cache-ttl"

	flagHTTPRetries = "http-retries"

	flagMaxDownloadSize    = "max-download-size"
	defaultMaxDownloadSize = -1

	flagParallelism = "parallelism"

	flagStaleness    = "staleness"
	defaultStaleness = "always"

	flagPrune = "prune"

	flagStrict = "strict"
)

// BindFlags will parse the given pflag.FlagSet and set the Options accordingly.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ProjectFile, flagProjectFile,
		envOrDefault(envProjectFile, defaultProjectFile),
		"The path to the project descriptor.")

	fs.StringVar(&o.Configuration, flagConfiguration,
		project.RuntimeClasspath,
		"The configuration whose dependencies are resolved.")

	fs.StringVar(&o.DocsType, flagDocsType,
		attribute.DocsTypeSources,
		"The kind of documentation to resolve, one of 'sources' or 'javadoc'.")

	fs.StringVar(&o.Destination, flagDestination,
		"",
		"The directory the artifacts are copied into. Defaults to '<buildDir>/<docs-type>'.")

	fs.StringVar(&o.CacheDir, flagCacheDir,
		envOrDefault(envCacheDir, defaultCacheDir()),
		"The directory downloaded files are cached in.")

	fs.DurationVar(&o.CacheTTL, flagCacheTTL,
		0,
		"The duration after which unused cached files are garbage collected, 0 to disable.")

	fs.IntVar(&o.HTTPRetries, flagHTTPRetries,
		maven.DefaultRetries,
		"The number of retries of a failed HTTP request.")

	fs.Int64Var(&o.MaxDownloadSize, flagMaxDownloadSize,
		defaultMaxDownloadSize,
		"The maximum size in bytes of a downloaded file, -1 for unlimited.")

	fs.IntVar(&o.Parallelism, flagParallelism,
		view.DefaultParallelism,
		"The number of dependencies downloaded concurrently.")

	fs.StringVar(&o.Staleness, flagStaleness,
		defaultStaleness,
		"When to re-run the copy, 'always' or 'auto' to skip runs with unchanged inputs and outputs.")

	fs.BoolVar(&o.Prune, flagPrune,
		false,
		"Remove files from the destination that the run did not produce.")

	fs.BoolVar(&o.Strict, flagStrict,
		false,
		"Fail when a dependency has no documentation artifact instead of skipping it.")
}

// envOrDefault returns the value of the environment variable named by the key.
// If the variable is empty or not present, it returns the defaultValue instead.
func envOrDefault(envName, defaultValue string) string {
	ret := os.Getenv(envName)
	if ret != "" {
		return ret
	}

	return defaultValue
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "docs-resolver")
}
