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

package config_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"

	"github.com/fluxcd/docs-resolver/config"
)

func Test_Options_BindFlags(t *testing.T) {
	tests := []struct {
		name                    string
		envVars                 map[string]string
		commandLine             []string
		expectedProjectFile     string
		expectedConfiguration   string
		expectedDocsType        string
		expectedDestination     string
		expectedCacheDir        string
		expectedCacheTTL        time.Duration
		expectedHTTPRetries     int
		expectedParallelism     int
		expectedMaxDownloadSize int64
		expectedStaleness       string
		expectedPrune           bool
		expectedStrict          bool
	}{
		{
			name:                    "empty flags gets default values",
			envVars:                 map[string]string{"DOCS_RESOLVER_CACHE": "/cache"},
			commandLine:             []string{""},
			expectedProjectFile:     "project.yaml",
			expectedConfiguration:   "runtimeClasspath",
			expectedDocsType:        "sources",
			expectedCacheDir:        "/cache",
			expectedHTTPRetries:     3,
			expectedParallelism:     4,
			expectedMaxDownloadSize: -1,
			expectedStaleness:       "always",
		},
		{
			name: "environment variables",
			envVars: map[string]string{
				"DOCS_RESOLVER_PROJECT": "/src/app/project.yaml",
				"DOCS_RESOLVER_CACHE":   "/var/cache/docs",
			},
			commandLine:             []string{""},
			expectedProjectFile:     "/src/app/project.yaml",
			expectedConfiguration:   "runtimeClasspath",
			expectedDocsType:        "sources",
			expectedCacheDir:        "/var/cache/docs",
			expectedHTTPRetries:     3,
			expectedParallelism:     4,
			expectedMaxDownloadSize: -1,
			expectedStaleness:       "always",
		},
		{
			name: "flags override environment variables",
			envVars: map[string]string{
				"DOCS_RESOLVER_PROJECT": "/src/app/project.yaml",
				"DOCS_RESOLVER_CACHE":   "/var/cache/docs",
			},
			commandLine: []string{
				"--project-file=other.yaml",
				"--cache-dir=/tmp/cache",
			},
			expectedProjectFile:     "other.yaml",
			expectedConfiguration:   "runtimeClasspath",
			expectedDocsType:        "sources",
			expectedCacheDir:        "/tmp/cache",
			expectedHTTPRetries:     3,
			expectedParallelism:     4,
			expectedMaxDownloadSize: -1,
			expectedStaleness:       "always",
		},
		{
			name: "all flags set",
			envVars: map[string]string{
				"DOCS_RESOLVER_CACHE": "/cache",
			},
			commandLine: []string{
				"--project-file=build.yaml",
				"--configuration=compileClasspath",
				"--docs-type=javadoc",
				"--destination=out/docs",
				"--cache-ttl=720h",
				"--http-retries=0",
				"--parallelism=2",
				"--max-download-size=1048576",
				"--staleness=auto",
				"--prune",
				"--strict",
			},
			expectedProjectFile:     "build.yaml",
			expectedConfiguration:   "compileClasspath",
			expectedDocsType:        "javadoc",
			expectedDestination:     "out/docs",
			expectedCacheDir:        "/cache",
			expectedCacheTTL:        720 * time.Hour,
			expectedHTTPRetries:     0,
			expectedParallelism:     2,
			expectedMaxDownloadSize: 1048576,
			expectedStaleness:       "auto",
			expectedPrune:           true,
			expectedStrict:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			// Set up environment variables
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			f := pflag.NewFlagSet("test", pflag.ContinueOnError)
			opts := config.Options{}
			opts.BindFlags(f)

			err := f.Parse(tt.commandLine)
			g.Expect(err).NotTo(HaveOccurred())

			g.Expect(opts.ProjectFile).To(Equal(tt.expectedProjectFile))
			g.Expect(opts.Configuration).To(Equal(tt.expectedConfiguration))
			g.Expect(opts.DocsType).To(Equal(tt.expectedDocsType))
			g.Expect(opts.Destination).To(Equal(tt.expectedDestination))
			g.Expect(opts.CacheDir).To(Equal(tt.expectedCacheDir))
			g.Expect(opts.CacheTTL).To(Equal(tt.expectedCacheTTL))
			g.Expect(opts.HTTPRetries).To(Equal(tt.expectedHTTPRetries))
			g.Expect(opts.Parallelism).To(Equal(tt.expectedParallelism))
			g.Expect(opts.MaxDownloadSize).To(Equal(tt.expectedMaxDownloadSize))
			g.Expect(opts.Staleness).To(Equal(tt.expectedStaleness))
			g.Expect(opts.Prune).To(Equal(tt.expectedPrune))
			g.Expect(opts.Strict).To(Equal(tt.expectedStrict))
			g.Expect(opts.Validate()).To(Succeed())
		})
	}
}
