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

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/fluxcd/docs-resolver/config"
	"github.com/fluxcd/docs-resolver/logger"
	"github.com/fluxcd/docs-resolver/maven"
	"github.com/fluxcd/docs-resolver/plugin"
	"github.com/fluxcd/docs-resolver/project"
	"github.com/fluxcd/docs-resolver/storage"
)

var resolveSourcesCmd = &cobra.Command{
	Use:   "resolve-sources",
	Short: plugin.TaskDescription,
	Long: `Resolve the source artifacts of every dependency of the runtime classpath
and copy them into '<buildDir>/sources'. Dependencies that do not publish
sources are skipped unless --strict is set.`,
	Args: cobra.NoArgs,
	RunE: runResolveSources,
}

var resolveSourcesOpts config.Options

func init() {
	rootCmd.AddCommand(resolveSourcesCmd)

	resolveSourcesOpts.BindFlags(resolveSourcesCmd.Flags())
}

func runResolveSources(cmd *cobra.Command, args []string) error {
	if err := resolveSourcesOpts.Validate(); err != nil {
		return err
	}
	opts, err := resolveSourcesOpts.PluginOptions()
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler()
	defer cancel()

	log := logger.NewLogger(rootArgs.logOptions)
	ctx = logr.NewContext(ctx, log)

	d, err := project.Load(resolveSourcesOpts.ProjectFile)
	if err != nil {
		return err
	}
	repos, err := d.MavenRepositories()
	if err != nil {
		return err
	}

	cache := &storage.Storage{BasePath: resolveSourcesOpts.CacheDir}
	client := maven.NewClient(repos, cache,
		maven.WithRetries(resolveSourcesOpts.HTTPRetries),
		maven.WithMaxDownloadSize(resolveSourcesOpts.MaxDownloadSize),
		maven.WithLogger(log.WithName("maven")),
	)

	p, err := project.New(d, client)
	if err != nil {
		return err
	}
	t, err := plugin.Apply(p, opts)
	if err != nil {
		return err
	}

	// The cache is created once the configuration is known to exist.
	if err := os.MkdirAll(cache.BasePath, storage.DefaultDirMode); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	log.V(logger.DebugLevel).Info("executing task", "task", t.Name(), "group", t.Group(), "policy", t.Policy().String())
	report, err := t.Execute(ctx)
	if err != nil {
		return err
	}

	if ttl := resolveSourcesOpts.CacheTTL; ttl > 0 {
		deleted, err := cache.GarbageCollect(ctx, ttl, time.Minute)
		if err != nil {
			log.Error(err, "failed to garbage collect the cache", "cache", cache.BasePath)
		} else if len(deleted) > 0 {
			log.Info("garbage collected unused cache files", "files", len(deleted))
		}
	}

	out := cmd.OutOrStdout()
	if report.UpToDate {
		fmt.Fprintf(out, "%s is up to date\n", t.Name())
		return nil
	}
	fmt.Fprintf(out, "%d file(s) copied to %s\n", len(report.Files), t.Outputs()[0])
	for _, name := range report.Collisions {
		fmt.Fprintf(out, "overwritten: %s\n", name)
	}
	for _, name := range report.Pruned {
		fmt.Fprintf(out, "pruned: %s\n", name)
	}
	return nil
}
