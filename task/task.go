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

package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/opencontainers/go-digest"

	"github.com/fluxcd/docs-resolver/graph"
	"github.com/fluxcd/docs-resolver/storage"
	"github.com/fluxcd/docs-resolver/view"
)

// Task copies the documentation artifacts of a dependency graph into a
// destination directory.
type Task struct {
	name        string
	group       string
	description string

	registry  graph.Registry
	policy    StalenessPolicy
	stateFile string
	prune     bool
	queryOpts []view.Option

	state     State
	graphName string
	docsKind  string
	dest      string
	inputs    *view.ArtifactSet
}

// Option configures a Task.
type Option func(t *Task)

// WithName sets the name the task is reported under.
func WithName(name string) Option {
	return func(t *Task) { t.name = name }
}

// WithGroup sets the group the task is listed in.
func WithGroup(group string) Option {
	return func(t *Task) { t.group = group }
}

// WithDescription sets the task description.
func WithDescription(description string) Option {
	return func(t *Task) { t.description = description }
}

// WithPolicy sets the staleness policy, AlwaysStale by default.
func WithPolicy(p StalenessPolicy) Option {
	return func(t *Task) { t.policy = p }
}

// WithStateFile sets the file the Auto policy records executions in.
// Without a state file the Auto policy never considers the task up to date.
func WithStateFile(path string) Option {
	return func(t *Task) { t.stateFile = path }
}

// WithPrune removes files from the destination that the current execution
// did not produce.
func WithPrune(prune bool) Option {
	return func(t *Task) { t.prune = prune }
}

// WithQueryOptions overrides the defaults of the documentation query.
func WithQueryOptions(opts ...view.Option) Option {
	return func(t *Task) { t.queryOpts = append(t.queryOpts, opts...) }
}

// New returns an unconfigured Task resolving graphs from the given registry.
func New(registry graph.Registry, opts ...Option) *Task {
	t := &Task{
		name:     "resolveDocs",
		registry: registry,
		policy:   AlwaysStale,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Name returns the name of the task.
func (t *Task) Name() string { return t.name }

// Group returns the group of the task.
func (t *Task) Group() string { return t.group }

// Description returns the description of the task.
func (t *Task) Description() string { return t.description }

// Policy returns the staleness policy of the task.
func (t *Task) Policy() StalenessPolicy { return t.policy }

// State returns the lifecycle state of the task.
func (t *Task) State() State { return t.state }

// Inputs returns the declared input of the task, nil until configured.
func (t *Task) Inputs() *view.ArtifactSet { return t.inputs }

// Outputs returns the declared outputs of the task.
func (t *Task) Outputs() []string {
	if t.dest == "" {
		return nil
	}
	return []string{t.dest}
}

// Configure binds the task to the graph registered under graphName, the
// documentation kind to resolve and the destination directory. It fails
// with a *graph.ConfigurationNotFoundError for an unknown graph, before any
// resolution takes place.
func (t *Task) Configure(graphName, destinationDir, docsKind string) error {
	if destinationDir == "" {
		return fmt.Errorf("destination directory must be set")
	}
	if docsKind == "" {
		return fmt.Errorf("documentation kind must be set")
	}
	g, err := t.registry.Resolve(graphName)
	if err != nil {
		return err
	}
	t.graphName = graphName
	t.docsKind = docsKind
	t.dest = filepath.Clean(destinationDir)
	t.inputs = view.Build(g, docsKind, t.queryOpts...)
	t.state = Configured
	return nil
}

// UpToDate reports whether the task can be skipped. It is always false
// under the AlwaysStale policy.
func (t *Task) UpToDate(ctx context.Context) (bool, error) {
	if t.state == Unconfigured {
		return false, ErrNotConfigured
	}
	if t.policy == AlwaysStale || t.stateFile == "" {
		return false, nil
	}
	files, err := t.inputs.Files(ctx)
	if err != nil {
		return false, err
	}
	fp, err := fingerprint(files)
	if err != nil {
		return false, err
	}
	return t.upToDate(fp)
}

func (t *Task) upToDate(fp digest.Digest) (bool, error) {
	st, err := readState(t.stateFile)
	if err != nil || st == nil {
		return false, err
	}
	if st.Inputs != fp {
		return false, nil
	}
	return outputsMatch(storage.Storage{BasePath: t.dest}, st.Outputs), nil
}

// Report summarizes an execution.
type Report struct {
	// UpToDate is true when the execution was skipped.
	UpToDate bool
	// Copied lists every write in copy order. A name written more than
	// once appears once per write.
	Copied []string
	// Files lists the file names present in the destination after the run
	// that it wrote, each once, in first write order.
	Files []string
	// Collisions lists the file names written more than once; the last
	// write wins.
	Collisions []string
	// Pruned lists the file names removed from the destination.
	Pruned []string
}

// Execute resolves the artifact set and copies every file into the
// destination directory, preserving file names. Files sharing a name are
// overwritten in resolution order. The first failing copy aborts the run
// with an *IOError, leaving the destination partially populated.
func (t *Task) Execute(ctx context.Context) (*Report, error) {
	if t.state == Unconfigured {
		return nil, ErrNotConfigured
	}
	log := logr.FromContextOrDiscard(ctx).WithValues("task", t.name, "configuration", t.graphName, "destination", t.dest)

	files, err := t.inputs.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s artifacts of '%s': %w", t.docsKind, t.graphName, err)
	}

	var fp digest.Digest
	if t.policy == Auto && t.stateFile != "" {
		if fp, err = fingerprint(files); err != nil {
			return nil, fmt.Errorf("failed to fingerprint inputs: %w", err)
		}
		upToDate, err := t.upToDate(fp)
		if err != nil {
			log.Error(err, "ignoring unreadable task state", "state", t.stateFile)
		}
		if upToDate {
			log.V(1).Info("task is up to date")
			t.state = Executed
			return &Report{UpToDate: true}, nil
		}
	}

	if err := os.MkdirAll(t.dest, storage.DefaultDirMode); err != nil {
		return nil, &IOError{Op: "create directory", Path: t.dest, Err: err}
	}
	unlock, err := storage.Storage{BasePath: filepath.Dir(t.dest)}.Lock(filepath.Base(t.dest))
	if err != nil {
		return nil, &IOError{Op: "lock", Path: t.dest, Err: err}
	}
	defer unlock()

	dest, err := storage.New(t.dest)
	if err != nil {
		return nil, &IOError{Op: "open directory", Path: t.dest, Err: err}
	}

	report := &Report{}
	outputs := make(map[string]digest.Digest, len(files))
	written := make(map[string]graph.ModuleVersion, len(files))
	for _, f := range files {
		name := filepath.Base(f.Name)
		prev, overwrite := written[name]
		if overwrite {
			log.Info("overwriting file with the same name", "file", name, "previous", prev.String(), "component", f.Component.String())
			report.Collisions = append(report.Collisions, name)
		}
		entry, err := dest.CopyFromPath(name, f.Path)
		if err != nil {
			return report, &IOError{Op: "copy", Path: dest.LocalPath(name), Err: err}
		}
		written[name] = f.Component
		outputs[name] = entry.Digest
		report.Copied = append(report.Copied, name)
		if !overwrite {
			report.Files = append(report.Files, name)
		}
	}

	if t.prune {
		keep := make([]string, 0, len(outputs))
		for n := range outputs {
			keep = append(keep, n)
		}
		pruned, err := dest.RemoveAllBut(keep)
		report.Pruned = pruned
		if err != nil {
			return report, &IOError{Op: "prune", Path: t.dest, Err: err}
		}
	}

	if t.policy == Auto && t.stateFile != "" {
		if err := writeState(t.stateFile, executionState{Inputs: fp, Outputs: outputs}); err != nil {
			return report, &IOError{Op: "write state", Path: t.stateFile, Err: err}
		}
	}

	t.state = Executed
	log.Info("documentation artifacts copied", "files", len(outputs), "collisions", len(report.Collisions))
	return report, nil
}
