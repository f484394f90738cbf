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
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/fluxcd/docs-resolver/graph"
	"github.com/fluxcd/docs-resolver/task"
	"github.com/fluxcd/docs-resolver/testserver"
)

func TestExitCode(t *testing.T) {
	g := NewWithT(t)

	g.Expect(exitCode(nil)).To(Equal(0))
	g.Expect(exitCode(errors.New("boom"))).To(Equal(1))
	g.Expect(exitCode(fmt.Errorf("apply: %w", &graph.ConfigurationNotFoundError{Name: "x"}))).To(Equal(2))
	g.Expect(exitCode(&task.IOError{Op: "copy", Path: "/dest", Err: os.ErrPermission})).To(Equal(3))
}

func TestResolveSourcesCmd(t *testing.T) {
	g := NewWithT(t)

	repo, err := testserver.NewTempMavenRepository()
	g.Expect(err).ToNot(HaveOccurred())
	repo.Start()
	defer func() {
		repo.Stop()
		os.RemoveAll(repo.Root())
	}()
	g.Expect(repo.Publish(testserver.Module{
		Group:    "org.example",
		Name:     "lib",
		Version:  "1.0.0",
		Sources:  "lib sources",
		Metadata: true,
	})).To(Succeed())

	dir := t.TempDir()
	projectFile := filepath.Join(dir, "project.yaml")
	g.Expect(os.WriteFile(projectFile, []byte(fmt.Sprintf(`
name: demo
repositories:
  - name: test
    url: %s
configurations:
  implementation:
    dependencies: ["org.example:lib:1.0.0"]
  runtimeClasspath:
    extendsFrom: [implementation]
`, repo.URL())), 0o644)).To(Succeed())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"resolve-sources",
		"--project-file", projectFile,
		"--cache-dir", filepath.Join(dir, "cache"),
		"--http-retries", "0",
		"--log-level", "error",
	})
	g.Expect(rootCmd.Execute()).To(Succeed())
	g.Expect(out.String()).To(ContainSubstring("1 file(s) copied"))
	g.Expect(os.ReadFile(filepath.Join(dir, "build", "sources", "lib-1.0.0-sources.jar"))).To(BeEquivalentTo("lib sources"))

	fresh := t.TempDir()
	freshProject := filepath.Join(fresh, "project.yaml")
	projectYAML, err := os.ReadFile(projectFile)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(os.WriteFile(freshProject, projectYAML, 0o644)).To(Succeed())

	rootCmd.SetArgs([]string{
		"resolve-sources",
		"--project-file", freshProject,
		"--cache-dir", filepath.Join(fresh, "cache"),
		"--configuration", "testRuntimeClasspath",
		"--log-level", "error",
	})
	err = rootCmd.Execute()
	g.Expect(err).To(HaveOccurred())
	g.Expect(exitCode(err)).To(Equal(2))

	for _, p := range []string{"cache", "build"} {
		_, statErr := os.Stat(filepath.Join(fresh, p))
		g.Expect(os.IsNotExist(statErr)).To(BeTrue(), "%s must not be created", p)
	}
}
