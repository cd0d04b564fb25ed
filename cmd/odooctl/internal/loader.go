/*
Copyright 2026.

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

package internal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
)

const (
	expectedAPIVersion = "apps.odoo-operator.io/v1alpha1"
	expectedKind       = "OdooInstance"
)

// LoadFile loads OdooInstance manifests from a YAML file.
// Supports multi-document YAML files separated by "---".
func LoadFile(path string) ([]*appsv1alpha1.OdooInstance, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadReader(file)
}

// LoadReader loads OdooInstance manifests from a reader.
func LoadReader(r io.Reader) ([]*appsv1alpha1.OdooInstance, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	var instances []*appsv1alpha1.OdooInstance
	for i, doc := range splitYAMLDocuments(content) {
		if len(bytes.TrimSpace(doc)) == 0 {
			continue
		}

		instance, err := parseDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse document %d: %w", i+1, err)
		}
		instances = append(instances, instance)
	}

	if len(instances) == 0 {
		return nil, fmt.Errorf("no valid resources found in file")
	}
	return instances, nil
}

// splitYAMLDocuments splits YAML content by "---" separator
func splitYAMLDocuments(content []byte) [][]byte {
	var documents [][]byte
	var current bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(content))

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			if current.Len() > 0 {
				documents = append(documents, bytes.Clone(current.Bytes()))
				current.Reset()
			}
		} else {
			current.WriteString(line)
			current.WriteString("\n")
		}
	}

	if current.Len() > 0 {
		documents = append(documents, current.Bytes())
	}
	return documents
}

// parseDocument parses a single YAML document into an OdooInstance.
func parseDocument(doc []byte) (*appsv1alpha1.OdooInstance, error) {
	instance := &appsv1alpha1.OdooInstance{}
	if err := yaml.UnmarshalStrict(doc, instance); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if instance.APIVersion != expectedAPIVersion {
		return nil, fmt.Errorf("unexpected apiVersion: %s (expected %s)", instance.APIVersion, expectedAPIVersion)
	}
	if instance.Kind != expectedKind {
		return nil, fmt.Errorf("unsupported kind: %s (expected %s)", instance.Kind, expectedKind)
	}
	if instance.Name == "" {
		return nil, fmt.Errorf("metadata.name is required")
	}
	if instance.Namespace == "" {
		instance.Namespace = "default"
	}
	return instance, nil
}
