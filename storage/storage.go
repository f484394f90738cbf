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
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/fluxcd/pkg/lockedfile"
)

const (
	// DefaultFileMode is the mode of the files written to the storage.
	DefaultFileMode os.FileMode = 0o644
	// DefaultDirMode is the mode of the directories created in the storage.
	DefaultDirMode os.FileMode = 0o755
)

// Storage manages artifact files under a local base directory.
// It provides methods for atomically writing, verifying, locking and
// pruning files.
type Storage struct {
	// BasePath is the local directory path where the files are stored.
	BasePath string `json:"basePath"`
}

// Entry describes a file written to the storage.
type Entry struct {
	// Path is the path of the file relative to Storage.BasePath.
	Path string `json:"path"`

	// Digest is the digest of the file content.
	Digest digest.Digest `json:"digest"`

	// Size is the number of bytes of the file.
	Size int64 `json:"size"`
}

// New creates the storage helper for the given existing directory.
func New(basePath string) (*Storage, error) {
	if f, err := os.Stat(basePath); os.IsNotExist(err) || (err == nil && !f.IsDir()) {
		return nil, fmt.Errorf("invalid dir path: %s", basePath)
	} else if err != nil {
		return nil, err
	}
	return &Storage{BasePath: basePath}, nil
}

// Exists returns a boolean indicating whether the file exists in storage
// and is a regular file.
func (s Storage) Exists(path string) bool {
	fi, err := os.Lstat(s.LocalPath(path))
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}

// Verify checks that the digest of the file in storage matches the given one.
// It returns an error if the digests don't match, or if it can't be verified.
func (s Storage) Verify(path string, d digest.Digest) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("failed to parse digest '%s': %w", d, err)
	}

	f, err := os.Open(s.LocalPath(path))
	if err != nil {
		return err
	}
	defer f.Close()

	verifier := d.Verifier()
	if _, err = io.Copy(verifier, f); err != nil {
		return err
	}
	if !verifier.Verified() {
		return fmt.Errorf("computed digest doesn't match '%s'", d.String())
	}
	return nil
}

// Digest computes the digest of the file in storage with the given algorithm.
func (s Storage) Digest(path string, algo digest.Algorithm) (digest.Digest, error) {
	f, err := os.Open(s.LocalPath(path))
	if err != nil {
		return "", err
	}
	defer f.Close()
	return algo.FromReader(f)
}

// Lock creates a file lock for the given path.
func (s Storage) Lock(path string) (unlock func(), err error) {
	lockFile := s.LocalPath(path) + ".lock"
	mutex := lockedfile.MutexAt(lockFile)
	return mutex.Lock()
}
