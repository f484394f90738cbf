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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/opencontainers/go-digest"

	"github.com/fluxcd/docs-resolver/storage"
	"github.com/fluxcd/docs-resolver/view"
)

// executionState is what a task records about its last execution.
type executionState struct {
	Inputs  digest.Digest            `json:"inputs"`
	Outputs map[string]digest.Digest `json:"outputs"`
}

// fingerprint digests the ordered list of input files, by name and content.
func fingerprint(files []view.File) (digest.Digest, error) {
	d := digest.Canonical.Digester()
	for _, f := range files {
		fd, err := fileDigest(f.Path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(d.Hash(), "%s\x00%s\x00%s\n", f.Component, f.Name, fd)
	}
	return d.Digest(), nil
}

func fileDigest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.Canonical.FromReader(f)
}

func readState(path string) (*executionState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var st executionState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("failed to decode task state '%s': %w", path, err)
	}
	return &st, nil
}

func writeState(path string, st executionState) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	dir, name := filepath.Dir(path), filepath.Base(path)
	if err := os.MkdirAll(dir, storage.DefaultDirMode); err != nil {
		return err
	}
	s := storage.Storage{BasePath: dir}
	_, err = s.AtomicWriteFile(name, bytes.NewReader(b), storage.DefaultFileMode)
	return err
}

// outputsMatch reports whether every recorded output still exists in the
// destination with the recorded digest.
func outputsMatch(dest storage.Storage, outputs map[string]digest.Digest) bool {
	names := make([]string, 0, len(outputs))
	for n := range outputs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if !dest.Exists(n) {
			return false
		}
		if err := dest.Verify(n, outputs[n]); err != nil {
			return false
		}
	}
	return true
}
