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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fluxcd/docs-resolver/graph"
	"github.com/fluxcd/docs-resolver/logger"
	"github.com/fluxcd/docs-resolver/task"
)

var rootCmd = &cobra.Command{
	Use:           "docs-resolver",
	Short:         "Resolve the documentation artifacts of a project's dependencies",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return rootArgs.logOptions.Validate()
	},
}

var rootArgs struct {
	logOptions logger.Options
}

func init() {
	rootArgs.logOptions.BindFlags(rootCmd.PersistentFlags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case graph.IsConfigurationNotFound(err):
		return 2
	case task.IsIOError(err):
		return 3
	default:
		return 1
	}
}

// setupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
// A second signal exits immediately.
func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx, func() {
		signal.Stop(c)
		cancel()
	}
}
