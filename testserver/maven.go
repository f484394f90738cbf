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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// NewTempMavenRepository returns a MavenRepository with a newly created
// temp dir as the docroot.
func NewTempMavenRepository() (*MavenRepository, error) {
	tmpDir, err := os.MkdirTemp("", "maven-test-")
	if err != nil {
		return nil, err
	}
	return &MavenRepository{NewHTTPServer(tmpDir)}, nil
}

// MavenRepository is an HTTP Maven layout repository for testing
// purposes. It offers utilities to publish mock modules.
type MavenRepository struct {
	*HTTPServer
}

// Module describes a module version to publish.
type Module struct {
	Group   string
	Name    string
	Version string

	// Dependencies are 'group:name:version' coordinates of runtime
	// dependencies.
	Dependencies []string

	// Jar, Sources and Javadoc are the bodies of the published jars.
	// An empty Sources or Javadoc means the jar is not published.
	Jar     string
	Sources string
	Javadoc string

	// Metadata publishes Gradle Module Metadata next to the POM.
	Metadata bool

	// NoDocumentationVariants leaves the documentation variants out of
	// the module metadata.
	NoDocumentationVariants bool
}

// Coordinates returns the 'group:name:version' of the module.
func (m Module) Coordinates() string {
	return m.Group + ":" + m.Name + ":" + m.Version
}

// FileName returns the name of the module file with the given classifier
// and extension.
func (m Module) FileName(classifier, ext string) string {
	name := m.Name + "-" + m.Version
	if classifier != "" {
		name += "-" + classifier
	}
	return name + "." + ext
}

// Dir returns the path of the module version directory, relative to the
// repository root.
func (m Module) Dir() string {
	return path.Join(strings.ReplaceAll(m.Group, ".", "/"), m.Name, m.Version)
}

// Publish writes the POM, the jars and optionally the module metadata of
// the module into the repository.
func (s *MavenRepository) Publish(m Module) error {
	dir := filepath.Join(s.Root(), filepath.FromSlash(m.Dir()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	jar := m.Jar
	if jar == "" {
		jar = "classes of " + m.Coordinates()
	}
	if err := os.WriteFile(filepath.Join(dir, m.FileName("", "jar")), []byte(jar), 0o644); err != nil {
		return err
	}
	if m.Sources != "" {
		if err := os.WriteFile(filepath.Join(dir, m.FileName("sources", "jar")), []byte(m.Sources), 0o644); err != nil {
			return err
		}
	}
	if m.Javadoc != "" {
		if err := os.WriteFile(filepath.Join(dir, m.FileName("javadoc", "jar")), []byte(m.Javadoc), 0o644); err != nil {
			return err
		}
	}

	pom, err := m.pom()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, m.FileName("", "pom")), []byte(pom), 0o644); err != nil {
		return err
	}

	if m.Metadata {
		b, err := json.MarshalIndent(m.metadata(jar), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, m.FileName("", "module")), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Overwrite replaces the content of a published file without updating the
// advertised checksums.
func (s *MavenRepository) Overwrite(m Module, fileName, body string) error {
	return os.WriteFile(filepath.Join(s.Root(), filepath.FromSlash(m.Dir()), fileName), []byte(body), 0o644)
}

// Path returns the URL path of a published file.
func (s *MavenRepository) Path(m Module, fileName string) string {
	return "/" + m.Dir() + "/" + fileName
}

func (m Module) pom() (string, error) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
`)
	fmt.Fprintf(&b, "  <groupId>%s</groupId>\n  <artifactId>%s</artifactId>\n  <version>%s</version>\n", m.Group, m.Name, m.Version)
	if len(m.Dependencies) > 0 {
		b.WriteString("  <dependencies>\n")
		for _, d := range m.Dependencies {
			parts := strings.Split(d, ":")
			if len(parts) != 3 {
				return "", fmt.Errorf("invalid dependency coordinates '%s'", d)
			}
			fmt.Fprintf(&b, "    <dependency>\n      <groupId>%s</groupId>\n      <artifactId>%s</artifactId>\n      <version>%s</version>\n      <scope>runtime</scope>\n    </dependency>\n", parts[0], parts[1], parts[2])
		}
		b.WriteString("  </dependencies>\n")
	}
	b.WriteString("</project>\n")
	return b.String(), nil
}

type metadataFile struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Size   int    `json:"size"`
	SHA256 string `json:"sha256"`
}

type metadataDependency struct {
	Group   string            `json:"group"`
	Module  string            `json:"module"`
	Version map[string]string `json:"version"`
}

type metadataVariant struct {
	Name         string               `json:"name"`
	Attributes   map[string]string    `json:"attributes"`
	Dependencies []metadataDependency `json:"dependencies,omitempty"`
	Files        []metadataFile       `json:"files,omitempty"`
}

func (m Module) metadata(jar string) map[string]interface{} {
	file := func(classifier, body string) metadataFile {
		name := m.FileName(classifier, "jar")
		sum := sha256.Sum256([]byte(body))
		return metadataFile{Name: name, URL: name, Size: len(body), SHA256: hex.EncodeToString(sum[:])}
	}

	var deps []metadataDependency
	for _, d := range m.Dependencies {
		parts := strings.SplitN(d, ":", 3)
		if len(parts) != 3 {
			continue
		}
		deps = append(deps, metadataDependency{Group: parts[0], Module: parts[1], Version: map[string]string{"requires": parts[2]}})
	}

	variants := []metadataVariant{
		{
			Name: "apiElements",
			Attributes: map[string]string{
				"org.gradle.category":            "library",
				"org.gradle.dependency.bundling": "external",
				"org.gradle.libraryelements":     "jar",
				"org.gradle.usage":               "java-api",
			},
			Files: []metadataFile{file("", jar)},
		},
		{
			Name: "runtimeElements",
			Attributes: map[string]string{
				"org.gradle.category":            "library",
				"org.gradle.dependency.bundling": "external",
				"org.gradle.libraryelements":     "jar",
				"org.gradle.usage":               "java-runtime",
			},
			Dependencies: deps,
			Files:        []metadataFile{file("", jar)},
		},
	}
	if !m.NoDocumentationVariants {
		for _, docs := range []struct{ kind, body string }{{"sources", m.Sources}, {"javadoc", m.Javadoc}} {
			if docs.body == "" {
				continue
			}
			variants = append(variants, metadataVariant{
				Name: docs.kind + "Elements",
				Attributes: map[string]string{
					"org.gradle.category":            "documentation",
					"org.gradle.dependency.bundling": "external",
					"org.gradle.docstype":            docs.kind,
					"org.gradle.usage":               "java-runtime",
				},
				Files: []metadataFile{file(docs.kind, docs.body)},
			})
		}
	}

	return map[string]interface{}{
		"formatVersion": "1.1",
		"component": map[string]string{
			"group":   m.Group,
			"module":  m.Name,
			"version": m.Version,
		},
		"variants": variants,
	}
}
