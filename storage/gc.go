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
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	kerrors "k8s.io/apimachinery/pkg/util/errors"
)

// GarbageCountLimit bounds the number of files walked by a collection.
const GarbageCountLimit = 100000

// Touch marks the file as used now, keeping it out of the next collection.
func (s Storage) Touch(path string) error {
	now := time.Now()
	return os.Chtimes(s.LocalPath(path), now, now)
}

// GarbageFiles returns the files, relative to the base path, that were not
// written or touched within the ttl. Lock files are never returned.
func (s Storage) GarbageFiles(ttl time.Duration, totalCountLimit int) ([]string, error) {
	now := time.Now().UTC()
	var (
		garbageFiles []string
		errs         []string
		walked       int
	)
	walkErr := filepath.WalkDir(s.BasePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err.Error())
			return nil
		}
		if d.IsDir() || d.Type()&os.ModeSymlink != 0 || filepath.Ext(path) == ".lock" {
			return nil
		}
		if walked >= totalCountLimit {
			return fmt.Errorf("reached file walking limit, already walked over: %d", walked)
		}
		walked++
		info, err := d.Info()
		if err != nil {
			errs = append(errs, err.Error())
			return nil
		}
		if now.Sub(info.ModTime().UTC()) > ttl {
			rel, err := filepath.Rel(s.BasePath, path)
			if err != nil {
				errs = append(errs, err.Error())
				return nil
			}
			garbageFiles = append(garbageFiles, filepath.ToSlash(rel))
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("can't walk over file: %s", strings.Join(errs, ","))
	}
	sort.Strings(garbageFiles)
	return garbageFiles, nil
}

// GarbageCollect removes the files not used within the ttl, together with
// their lock files. It aborts when the timeout is reached.
func (s Storage) GarbageCollect(ctx context.Context, ttl, timeout time.Duration) ([]string, error) {
	delFilesChan := make(chan []string, 1)
	errChan := make(chan error, 1)
	// Abort if it takes more than the provided timeout duration.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	go func() {
		garbageFiles, err := s.GarbageFiles(ttl, GarbageCountLimit)
		if err != nil {
			errChan <- err
			return
		}
		var errs []error
		var deleted []string
		for _, file := range garbageFiles {
			if err := os.Remove(s.LocalPath(file)); err != nil {
				errs = append(errs, err)
			} else {
				deleted = append(deleted, file)
			}
			// If a lock file exists for this garbage file, remove that too.
			lockFile := s.LocalPath(file) + ".lock"
			if _, err := os.Lstat(lockFile); err == nil {
				if err := os.Remove(lockFile); err != nil {
					errs = append(errs, err)
				}
			}
		}
		if len(errs) > 0 {
			errChan <- kerrors.NewAggregate(errs)
			return
		}
		delFilesChan <- deleted
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case delFiles := <-delFilesChan:
		return delFiles, nil
	case err := <-errChan:
		return nil, err
	}
}
