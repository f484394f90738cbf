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

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/opencontainers/go-digest"

	"github.com/fluxcd/docs-resolver/graph"
	"github.com/fluxcd/docs-resolver/masktoken"
	"github.com/fluxcd/docs-resolver/storage"
)

const (
	// DefaultRetries is the number of retries of a failed request.
	DefaultRetries = 3

	// maxMetadataSize bounds the size of .module and .pom documents.
	maxMetadataSize = 10 << 20

	// maxParentDepth bounds the chain of parent and imported POMs.
	maxParentDepth = 8
)

// Client fetches module metadata and files from Maven repositories, with
// retries and back off when a repository is unavailable. Downloaded files
// are kept in a local cache.
type Client struct {
	httpClient      *retryablehttp.Client
	repositories    []Repository
	cache           *storage.Storage
	maxDownloadSize int64

	mu      sync.Mutex
	origins map[graph.ModuleVersion]Repository
	poms    map[string]*POM
}

// Option configures a Client.
type Option func(c *Client)

// WithRetries sets the number of retries of a failed request.
func WithRetries(retries int) Option {
	return func(c *Client) { c.httpClient.RetryMax = retries }
}

// WithRetryWait sets the bounds of the wait between retries.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryWaitMin = min
		c.httpClient.RetryWaitMax = max
	}
}

// WithMaxDownloadSize limits the size of downloaded files, a value lower
// than one disables the limit.
func WithMaxDownloadSize(size int64) Option {
	return func(c *Client) { c.maxDownloadSize = size }
}

// WithLogger logs failed requests to the given logger.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.httpClient.Logger = newErrorLogger(log) }
}

// NewClient configures the retryable http client used for fetching from
// the given repositories, in order, into the given cache.
func NewClient(repositories []Repository, cache *storage.Storage, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryWaitMin = 1 * time.Second
	httpClient.RetryWaitMax = 30 * time.Second
	httpClient.RetryMax = DefaultRetries
	httpClient.Logger = nil

	c := &Client{
		httpClient:   httpClient,
		repositories: repositories,
		cache:        cache,
		origins:      make(map[graph.ModuleVersion]Repository),
		poms:         make(map[string]*POM),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Repositories returns the repositories the client searches, in order.
func (c *Client) Repositories() []Repository {
	return c.repositories
}

// Metadata returns the component of the given module version as published
// in the first repository that has it. Gradle Module Metadata is preferred,
// the POM is used as a fallback. It returns a *graph.ModuleNotFoundError if
// no repository publishes the module.
func (c *Client) Metadata(ctx context.Context, id graph.ModuleVersion) (*graph.Component, error) {
	var names []string
	for _, repo := range c.repositories {
		names = append(names, repo.Name)

		b, err := c.get(ctx, repo, repo.FileURL(id, baseName(id)+".module"), maxMetadataSize)
		switch {
		case err == nil:
			m, err := ParseModuleMetadata(b)
			if err != nil {
				return nil, fmt.Errorf("invalid metadata for '%s' in repository '%s': %w", id, repo.Name, err)
			}
			c.setOrigin(id, repo)
			return m.ToComponent(id), nil
		case !errors.Is(err, graph.ErrArtifactNotFound):
			return nil, err
		}

		pom, err := c.pom(ctx, repo, id, 0)
		switch {
		case err == nil:
			c.setOrigin(id, repo)
			return pom.ToComponent(id), nil
		case !errors.Is(err, graph.ErrArtifactNotFound):
			return nil, err
		}
	}
	return nil, &graph.ModuleNotFoundError{Module: id, Repositories: names}
}

// pom fetches the POM of the module version and merges its parents and
// the dependency management of the bills of materials it imports.
func (c *Client) pom(ctx context.Context, repo Repository, id graph.ModuleVersion, depth int) (*POM, error) {
	key := repo.Name + "/" + id.String()
	c.mu.Lock()
	cached, ok := c.poms[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	b, err := c.get(ctx, repo, repo.FileURL(id, baseName(id)+".pom"), maxMetadataSize)
	if err != nil {
		return nil, err
	}
	p, err := ParsePOM(b)
	if err != nil {
		return nil, fmt.Errorf("invalid pom for '%s' in repository '%s': %w", id, repo.Name, err)
	}
	if p.Parent != nil && p.Parent.ArtifactID != "" {
		if depth >= maxParentDepth {
			return nil, fmt.Errorf("parent pom chain of '%s' is deeper than %d", id, maxParentDepth)
		}
		parent, err := c.pom(ctx, repo, p.Parent.ModuleVersion(), depth+1)
		if err != nil {
			return nil, referencedPOMError("parent", p.Parent.ModuleVersion(), id, repo, err)
		}
		p.inherit(parent)
	}
	for _, bom := range p.imports() {
		if depth >= maxParentDepth {
			return nil, fmt.Errorf("imported pom chain of '%s' is deeper than %d", id, maxParentDepth)
		}
		imported, err := c.pom(ctx, repo, bom, depth+1)
		if err != nil {
			return nil, referencedPOMError("imported pom", bom, id, repo, err)
		}
		p.importManaged(imported)
	}

	c.mu.Lock()
	c.poms[key] = p
	c.mu.Unlock()
	return p, nil
}

// referencedPOMError reports a parent or imported POM that could not be
// fetched. A missing referenced POM is not reported as a missing module,
// so that the referencing module is not looked up in other repositories.
func referencedPOMError(kind string, ref, id graph.ModuleVersion, repo Repository, err error) error {
	if errors.Is(err, graph.ErrArtifactNotFound) {
		return fmt.Errorf("%s '%s' of '%s' is not published in repository '%s'", kind, ref, id, repo.Name)
	}
	return fmt.Errorf("failed to fetch %s '%s' of '%s': %w", kind, ref, id, err)
}

// Download makes the given file of the module version available in the
// cache and returns its local path. A cached file is reused if it matches
// the advertised digest. It returns an error wrapping
// graph.ErrArtifactNotFound when the file is not published.
func (c *Client) Download(ctx context.Context, id graph.ModuleVersion, file graph.File) (string, error) {
	if c.cache == nil {
		return "", fmt.Errorf("no cache configured")
	}
	cachePath := storage.ModulePath(id.Group, id.Name, id.Version, file.Name)
	if err := c.cache.MkdirAll(cachePath); err != nil {
		return "", err
	}
	unlock, err := c.cache.Lock(cachePath)
	if err != nil {
		return "", fmt.Errorf("failed to lock '%s': %w", cachePath, err)
	}
	defer unlock()

	expected, err := expectedDigest(file)
	if err != nil {
		return "", fmt.Errorf("invalid digest for %s of '%s': %w", file.Name, id, err)
	}

	if c.cache.Exists(cachePath) && (expected == "" || c.cache.Verify(cachePath, expected) == nil) {
		if err := c.cache.Touch(cachePath); err != nil {
			return "", fmt.Errorf("failed to touch '%s': %w", cachePath, err)
		}
		return c.cache.LocalPath(cachePath), nil
	}

	rel := file.URL
	if rel == "" {
		rel = file.Name
	}

	var lastErr error
	for _, repo := range c.candidates(id) {
		err := c.download(ctx, repo, repo.FileURL(id, rel), cachePath, expected)
		if err == nil {
			return c.cache.LocalPath(cachePath), nil
		}
		if !errors.Is(err, graph.ErrArtifactNotFound) {
			return "", err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%s of '%s': %w", file.Name, id, graph.ErrArtifactNotFound)
	}
	return "", lastErr
}

func (c *Client) download(ctx context.Context, repo Repository, fileURL, cachePath string, expected digest.Digest) error {
	resp, err := c.do(ctx, repo, fileURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if c.maxDownloadSize > 0 {
		body = io.LimitReader(resp.Body, c.maxDownloadSize)
	}

	verifier := digest.Digester(nil)
	if expected != "" {
		verifier = expected.Algorithm().Digester()
		body = io.TeeReader(body, verifier.Hash())
	}

	if _, err := c.cache.Copy(cachePath, body); err != nil {
		return fmt.Errorf("failed to store '%s': %w", fileURL, err)
	}

	// Headers can lie, so instead of trusting resp.ContentLength,
	// limit the download to the max download size and error in case
	// there are still bytes left.
	if c.maxDownloadSize > 0 {
		if n, _ := io.Copy(io.Discard, resp.Body); n > 0 {
			_ = c.cache.Remove(cachePath)
			return fmt.Errorf("artifact '%s' is %d bytes greater than the max download size of %d bytes", fileURL, n, c.maxDownloadSize)
		}
	}

	if verifier != nil && verifier.Digest() != expected {
		_ = c.cache.Remove(cachePath)
		return fmt.Errorf("failed to verify '%s': computed digest '%s' doesn't match advertised '%s'", fileURL, verifier.Digest(), expected)
	}
	return nil
}

// get returns the body of the given URL, bounded to limit bytes.
func (c *Client) get(ctx context.Context, repo Repository, fileURL string, limit int64) ([]byte, error) {
	resp, err := c.do(ctx, repo, fileURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", fileURL, err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("document '%s' exceeds %d bytes", fileURL, limit)
	}
	return b, nil
}

// do performs a GET request against the repository. If the server responds
// with 5xx errors, the request is retried. If the server responds with 404,
// the returned error wraps graph.ErrArtifactNotFound.
func (c *Client) do(ctx context.Context, repo Repository, fileURL string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create a new request: %w", err)
	}
	if repo.Username != "" || repo.Password != "" {
		req.SetBasicAuth(repo.Username, repo.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, masktoken.MaskError(&FetchError{URL: fileURL, Repository: repo.Name, Err: err}, repo.Password)
	}

	if code := resp.StatusCode; code != http.StatusOK {
		resp.Body.Close()
		if code == http.StatusNotFound || code == http.StatusGone {
			return nil, fmt.Errorf("'%s': %w", fileURL, graph.ErrArtifactNotFound)
		}
		return nil, &FetchError{URL: fileURL, Repository: repo.Name, StatusCode: code, Err: fmt.Errorf("status: %s", resp.Status)}
	}
	return resp, nil
}

func (c *Client) setOrigin(id graph.ModuleVersion, repo Repository) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.origins[id] = repo
}

// candidates returns the repositories to download files of id from: the
// one its metadata came from, or all of them.
func (c *Client) candidates(id graph.ModuleVersion) []Repository {
	c.mu.Lock()
	defer c.mu.Unlock()
	if repo, ok := c.origins[id]; ok {
		return []Repository{repo}
	}
	return c.repositories
}

// expectedDigest returns the strongest advertised digest go-digest can
// verify, or an empty digest.
func expectedDigest(file graph.File) (digest.Digest, error) {
	for _, algo := range []digest.Algorithm{digest.SHA512, digest.SHA256} {
		if v, ok := file.Digests[string(algo)]; ok && v != "" {
			d := digest.NewDigestFromEncoded(algo, v)
			if err := d.Validate(); err != nil {
				return "", err
			}
			return d, nil
		}
	}
	return "", nil
}
