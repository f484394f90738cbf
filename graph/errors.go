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

package graph

import (
	"errors"
	"fmt"
)

// ErrArtifactNotFound signals that a file is not published upstream.
var ErrArtifactNotFound = errors.New("artifact not found")

// ConfigurationNotFoundError is returned when a dependency graph is
// requested under a name that is not registered.
type ConfigurationNotFoundError struct {
	Name      string
	Available []string
}

func (e *ConfigurationNotFoundError) Error() string {
	err := fmt.Sprintf("configuration '%s' not found", e.Name)
	if len(e.Available) == 0 {
		return err
	}
	return fmt.Sprintf("%s (available: %q)", err, e.Available)
}

// IsConfigurationNotFound reports whether err is, or wraps, a
// *ConfigurationNotFoundError.
func IsConfigurationNotFound(err error) bool {
	var e *ConfigurationNotFoundError
	return errors.As(err, &e)
}

// ModuleNotFoundError is returned when no repository publishes the
// metadata of a module version.
type ModuleNotFoundError struct {
	Module       ModuleVersion
	Repositories []string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module '%s' not found in repositories %q", e.Module, e.Repositories)
}

// Is makes errors.Is(err, ErrArtifactNotFound) hold for missing modules.
func (e *ModuleNotFoundError) Is(target error) bool {
	return target == ErrArtifactNotFound
}
