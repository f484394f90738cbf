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

// Package plugin registers the documentation resolution task of a project
// with its conventional name, group, graph and destination.
package plugin

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fluxcd/docs-resolver/attribute"
	"github.com/fluxcd/docs-resolver/project"
	"github.com/fluxcd/docs-resolver/task"
	"github.com/fluxcd/docs-resolver/view"
)

const (
	// TaskName is the name of the task resolving sources.
	TaskName = "resolveSources"

	// TaskGroup is the group the task is listed in.
	TaskGroup = "documentation"

	// TaskDescription describes the task resolving sources.
	TaskDescription = "Resolve source artifacts for all runtime dependencies"

	// DefaultConfiguration is the graph the task resolves.
	DefaultConfiguration = project.RuntimeClasspath

	// DefaultDocsType is the documentation kind the task resolves.
	DefaultDocsType = attribute.DocsTypeSources
)

// Options overrides the conventions of the task. Zero values keep the
// convention.
type Options struct {
	// Configuration is the name of the graph to resolve.
	Configuration string

	// DocsType is the documentation kind to resolve.
	DocsType string

	// Destination is the directory the artifacts are copied into,
	// '<buildDir>/<docsType>' by default.
	Destination string

	// Policy is the staleness policy, AlwaysStale by default.
	Policy task.StalenessPolicy

	// StateFile records executions for the Auto policy,
	// '<buildDir>/tmp/<taskName>/state.json' by default.
	StateFile string

	// Prune removes files from the destination that a run did not produce.
	Prune bool

	// Strict fails the run on the first unresolvable dependency instead of
	// skipping it.
	Strict bool

	// Parallelism is the number of dependencies downloaded concurrently,
	// view.DefaultParallelism when zero.
	Parallelism int
}

// Apply registers and configures the documentation task of the project.
// It fails with a *graph.ConfigurationNotFoundError when the project has no
// such configuration.
func Apply(p *project.Project, opts Options) (*task.Task, error) {
	if p == nil {
		return nil, fmt.Errorf("project must be set")
	}
	if opts.Configuration == "" {
		opts.Configuration = DefaultConfiguration
	}
	if opts.DocsType == "" {
		opts.DocsType = DefaultDocsType
	}
	if opts.Destination == "" {
		opts.Destination = filepath.Join(p.BuildDir(), opts.DocsType)
	}

	name, description := taskNaming(opts.DocsType)
	if opts.StateFile == "" {
		opts.StateFile = filepath.Join(p.BuildDir(), "tmp", name, "state.json")
	}

	t := task.New(p,
		task.WithName(name),
		task.WithGroup(TaskGroup),
		task.WithDescription(description),
		task.WithPolicy(opts.Policy),
		task.WithStateFile(opts.StateFile),
		task.WithPrune(opts.Prune),
		task.WithQueryOptions(view.WithLenient(!opts.Strict), view.WithParallelism(opts.Parallelism)),
	)
	if err := t.Configure(opts.Configuration, opts.Destination, opts.DocsType); err != nil {
		return nil, err
	}
	return t, nil
}

func taskNaming(docsType string) (string, string) {
	if docsType == attribute.DocsTypeSources {
		return TaskName, TaskDescription
	}
	return "resolve" + strings.ToUpper(docsType[:1]) + docsType[1:],
		fmt.Sprintf("Resolve %s artifacts for all runtime dependencies", docsType)
}
