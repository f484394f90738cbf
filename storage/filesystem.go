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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/opencontainers/go-digest"
	kerrors "k8s.io/apimachinery/pkg/util/errors"
)

// AtomicWriteFile atomically writes the io.Reader contents to the given path
// with the given mode. If successful, it returns the digest and size of the
// written content.
func (s Storage) AtomicWriteFile(path string, reader io.Reader, mode os.FileMode) (_ Entry, err error) {
	localPath := s.LocalPath(path)
	if localPath == "" {
		return Entry{}, fmt.Errorf("invalid path '%s'", path)
	}
	tf, err := os.CreateTemp(filepath.Split(localPath))
	if err != nil {
		return Entry{}, err
	}
	tfName := tf.Name()
	defer func() {
		if err != nil {
			os.Remove(tfName)
		}
	}()

	d := digest.Canonical.Digester()
	sz := &writeCounter{}
	mw := io.MultiWriter(tf, d.Hash(), sz)

	if _, err := io.Copy(mw, reader); err != nil {
		tf.Close()
		return Entry{}, err
	}
	if err := tf.Close(); err != nil {
		return Entry{}, err
	}

	if err := os.Chmod(tfName, mode); err != nil {
		return Entry{}, err
	}

	if err := renameWithFallback(tfName, localPath); err != nil {
		return Entry{}, err
	}

	return Entry{Path: path, Digest: d.Digest(), Size: sz.written}, nil
}

// Copy atomically copies the io.Reader contents to the given path.
func (s Storage) Copy(path string, reader io.Reader) (Entry, error) {
	return s.AtomicWriteFile(path, reader, DefaultFileMode)
}

// CopyFromPath atomically copies the contents of the given local file to the path.
func (s Storage) CopyFromPath(path, from string) (_ Entry, err error) {
	f, err := os.Open(from)
	if err != nil {
		return Entry{}, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return s.Copy(path, f)
}

// MkdirAll creates the parent dir of the given path.
func (s Storage) MkdirAll(path string) error {
	dir := filepath.Dir(s.LocalPath(path))
	return os.MkdirAll(dir, DefaultDirMode)
}

// Remove calls os.Remove for the given path.
func (s Storage) Remove(path string) error {
	return os.Remove(s.LocalPath(path))
}

// List returns the relative paths of the regular files directly under the
// base dir, in lexical order. Lock files are skipped.
func (s Storage) List() ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) == ".lock" {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

// RemoveAllBut removes all regular files directly under the base dir,
// excluding the given ones. It returns the removed paths.
func (s Storage) RemoveAllBut(keep []string) ([]string, error) {
	files, err := s.List()
	if err != nil {
		return nil, err
	}
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}

	var (
		deleted []string
		errs    []error
	)
	for _, f := range files {
		if _, ok := keepSet[f]; ok {
			continue
		}
		if err := os.Remove(s.LocalPath(f)); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted = append(deleted, f)
	}
	return deleted, kerrors.NewAggregate(errs)
}

// renameWithFallback attempts to rename a file, falling back to a copy when
// source and destination are on different devices.
func renameWithFallback(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return fmt.Errorf("cannot rename %s to %s: %w", src, dst, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

type writeCounter struct {
	written int64
}

func (wc *writeCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.written += int64(n)
	return n, nil
}
