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

package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/fluxcd/docs-resolver/graph"
	"github.com/fluxcd/docs-resolver/maven"
	"github.com/fluxcd/docs-resolver/project"
	"github.com/fluxcd/docs-resolver/storage"
	"github.com/fluxcd/docs-resolver/task"
	"github.com/fluxcd/docs-resolver/testserver"
)

// newTestProject publishes the modules into a fake Maven repository and
// returns a project whose runtimeClasspath depends on the roots.
func newTestProject(t *testing.T, modules []testserver.Module, roots ...string) *project.Project {
	t.Helper()

	repo, err := testserver.NewTempMavenRepository()
	if err != nil {
		t.Fatalf("failed to create the test server: %v", err)
	}
	repo.Start()
	t.Cleanup(func() {
		repo.Stop()
		os.RemoveAll(repo.Root())
	})
	for _, m := range modules {
		if err := repo.Publish(m); err != nil {
			t.Fatal(err)
		}
	}

	cache, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := maven.NewClient(
		[]maven.Repository{{Name: "test", URL: repo.URL()}},
		cache,
		maven.WithRetries(0),
		maven.WithRetryWait(time.Millisecond, time.Millisecond),
	)

	d := &project.Descriptor{
		Name: "demo",
		Dir:  t.TempDir(),
		Configurations: map[string]project.ConfigurationDescriptor{
			"implementation":         {Dependencies: roots},
			project.RuntimeClasspath: {ExtendsFrom: []string{"implementation"}},
		},
	}
	p, err := project.New(d, client)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestApply_Conventions(t *testing.T) {
	g := NewWithT(t)

	p := newTestProject(t, nil)
	tk, err := Apply(p, Options{})
	g.Expect(err).ToNot(HaveOccurred())

	g.Expect(tk.Name()).To(Equal("resolveSources"))
	g.Expect(tk.Group()).To(Equal("documentation"))
	g.Expect(tk.Description()).To(Equal("Resolve source artifacts for all runtime dependencies"))
	g.Expect(tk.Policy()).To(Equal(task.AlwaysStale))
	g.Expect(tk.State()).To(Equal(task.Configured))
	g.Expect(tk.Outputs()).To(Equal([]string{filepath.Join(p.BuildDir(), "sources")}))
	g.Expect(tk.Inputs().Query().Lenient()).To(BeTrue())
	g.Expect(tk.Inputs().Query().VariantReselection()).To(BeTrue())
	g.Expect(tk.Inputs().Graph().Name()).To(Equal("runtimeClasspath"))

	javadoc, err := Apply(p, Options{DocsType: "javadoc", Strict: true})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(javadoc.Name()).To(Equal("resolveJavadoc"))
	g.Expect(javadoc.Outputs()).To(Equal([]string{filepath.Join(p.BuildDir(), "javadoc")}))
	g.Expect(javadoc.Inputs().Query().Lenient()).To(BeFalse())
}

func TestApply_UnknownConfiguration(t *testing.T) {
	g := NewWithT(t)

	p := newTestProject(t, nil)
	_, err := Apply(p, Options{Configuration: "testRuntimeClasspath"})
	g.Expect(err).To(HaveOccurred())
	g.Expect(graph.IsConfigurationNotFound(err)).To(BeTrue())

	_, statErr := os.Stat(p.BuildDir())
	g.Expect(os.IsNotExist(statErr)).To(BeTrue())
}

func TestApply_Execute(t *testing.T) {
	modules := []testserver.Module{
		{
			Group:        "org.example",
			Name:         "app-lib",
			Version:      "1.0.0",
			Dependencies: []string{"org.example:pom-lib:2.0.0", "org.example:no-docs:1.0.0"},
			Sources:      "app-lib sources",
			Metadata:     true,
		},
		{
			Group:   "org.example",
			Name:    "pom-lib",
			Version: "2.0.0",
			Sources: "pom-lib sources",
		},
		{
			Group:    "org.example",
			Name:     "no-docs",
			Version:  "1.0.0",
			Metadata: true,
		},
	}

	t.Run("copies the sources of every runtime dependency", func(t *testing.T) {
		g := NewWithT(t)

		p := newTestProject(t, modules, "org.example:app-lib:1.0.0")
		tk, err := Apply(p, Options{})
		g.Expect(err).ToNot(HaveOccurred())

		report, err := tk.Execute(context.TODO())
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(report.Copied).To(Equal([]string{
			"app-lib-1.0.0-sources.jar",
			"pom-lib-2.0.0-sources.jar",
		}))

		g.Expect(report.Files).To(Equal(report.Copied))

		dest := filepath.Join(p.BuildDir(), "sources")
		g.Expect(os.ReadFile(filepath.Join(dest, "app-lib-1.0.0-sources.jar"))).To(BeEquivalentTo("app-lib sources"))
		g.Expect(os.ReadFile(filepath.Join(dest, "pom-lib-2.0.0-sources.jar"))).To(BeEquivalentTo("pom-lib sources"))

		// Always stale: a second run copies again.
		again, err := tk.Execute(context.TODO())
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(again.UpToDate).To(BeFalse())
		g.Expect(again.Copied).To(HaveLen(2))
	})

	t.Run("skips unchanged runs with the auto policy", func(t *testing.T) {
		g := NewWithT(t)

		p := newTestProject(t, modules, "org.example:app-lib:1.0.0")
		tk, err := Apply(p, Options{Policy: task.Auto})
		g.Expect(err).ToNot(HaveOccurred())

		first, err := tk.Execute(context.TODO())
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(first.UpToDate).To(BeFalse())

		second, err := tk.Execute(context.TODO())
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(second.UpToDate).To(BeTrue())
	})

	t.Run("fails in strict mode when a dependency has no sources", func(t *testing.T) {
		g := NewWithT(t)

		p := newTestProject(t, modules, "org.example:app-lib:1.0.0")
		tk, err := Apply(p, Options{Strict: true})
		g.Expect(err).ToNot(HaveOccurred())

		_, err = tk.Execute(context.TODO())
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("no-docs"))
	})
}
