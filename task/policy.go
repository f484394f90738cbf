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

import "fmt"

// StalenessPolicy decides whether a task may be skipped as up to date.
type StalenessPolicy int

const (
	// AlwaysStale makes every invocation execute the task.
	AlwaysStale StalenessPolicy = iota
	// Auto skips the task when neither its inputs nor its outputs changed
	// since the last recorded execution.
	Auto
)

// String implements the fmt.Stringer interface for StalenessPolicy.
func (p StalenessPolicy) String() string {
	switch p {
	case Auto:
		return "auto"
	default:
		return "always"
	}
}

// ParseStalenessPolicy parses 'always' or 'auto'.
func ParseStalenessPolicy(s string) (StalenessPolicy, error) {
	switch s {
	case "always", "":
		return AlwaysStale, nil
	case "auto":
		return Auto, nil
	default:
		return AlwaysStale, fmt.Errorf("invalid staleness policy %q (must be one of: %q)", s, []string{"always", "auto"})
	}
}

// State is the lifecycle state of a Task.
type State int

const (
	Unconfigured State = iota
	Configured
	Executed
)

// String implements the fmt.Stringer interface for State.
func (s State) String() string {
	switch s {
	case Configured:
		return "Configured"
	case Executed:
		return "Executed"
	default:
		return "Unconfigured"
	}
}
