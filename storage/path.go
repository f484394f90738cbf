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

package storage

import (
	"path"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// LocalPath returns the secure local path of the given relative path
// (that is: relative to the Storage.BasePath).
func (s Storage) LocalPath(p string) string {
	if p == "" {
		return ""
	}
	lp, err := securejoin.SecureJoin(s.BasePath, p)
	if err != nil {
		return ""
	}
	return lp
}

// ModuleDir returns the cache dir of a module version in the form of
// '<group>/<name>/<version>'.
func ModuleDir(group, name, version string) string {
	return path.Join(group, name, version)
}

// ModulePath returns the cache path of a module version file in the form of
// '<group>/<name>/<version>/<filename>'.
func ModulePath(group, name, version, filename string) string {
	return path.Join(ModuleDir(group, name, version), filename)
}
