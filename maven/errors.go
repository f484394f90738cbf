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

import "fmt"

// FetchError is returned when a repository cannot serve a request, either
// because the transport failed or because it answered with an unexpected
// status.
type FetchError struct {
	URL        string
	Repository string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch '%s' from repository '%s' (%d): %s", e.URL, e.Repository, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to fetch '%s' from repository '%s': %s", e.URL, e.Repository, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
