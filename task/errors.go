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
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a task is executed before Configure.
var ErrNotConfigured = errors.New("task is not configured")

// IOError is returned when the destination directory cannot be created or
// written to. It includes the operation, the path it was performed on and
// the underlying Err.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s '%s' failed: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsIOError reports whether err is, or wraps, an *IOError.
func IsIOError(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}
