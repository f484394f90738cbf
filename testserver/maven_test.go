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

package testserver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestMavenRepository_Publish(t *testing.T) {
	repo, err := NewTempMavenRepository()
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(repo.Root())

	m := Module{
		Group:        "org.example",
		Name:         "lib",
		Version:      "1.0.0",
		Dependencies: []string{"org.example:dep:2.0.0"},
		Sources:      "sources",
		Metadata:     true,
	}
	if err := repo.Publish(m); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(repo.Root(), "org", "example", "lib", "1.0.0")
	for _, name := range []string{"lib-1.0.0.jar", "lib-1.0.0.pom", "lib-1.0.0.module", "lib-1.0.0-sources.jar"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be published: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "lib-1.0.0-javadoc.jar")); !os.IsNotExist(err) {
		t.Errorf("expected javadoc jar not to be published")
	}

	b, err := os.ReadFile(filepath.Join(dir, "lib-1.0.0.module"))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Variants []struct {
			Name string `json:"name"`
		} `json:"variants"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Variants) != 3 {
		t.Errorf("expected 3 variants, got %d", len(doc.Variants))
	}

	if got := repo.Path(m, "lib-1.0.0.pom"); got != "/org/example/lib/1.0.0/lib-1.0.0.pom" {
		t.Errorf("unexpected path %s", got)
	}
}
