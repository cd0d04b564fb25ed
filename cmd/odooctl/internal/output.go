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
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sigs.k8s.io/yaml"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatYAML  OutputFormat = "yaml"
	FormatJSON  OutputFormat = "json"
)

// ParseOutputFormat parses a string into an OutputFormat
func ParseOutputFormat(s string) OutputFormat {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML
	case "json":
		return FormatJSON
	default:
		return FormatTable
	}
}

// Printer handles output formatting
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format OutputFormat, writer io.Writer) *Printer {
	return &Printer{
		format: format,
		writer: writer,
	}
}

// PrintResult prints a result message
func (p *Printer) PrintResult(message string) {
	fmt.Fprintln(p.writer, message)
}

// PrintTable prints data in table format
func (p *Printer) PrintTable(headers []string, rows [][]string) error {
	if p.format != FormatTable {
		var data []map[string]string
		for _, row := range rows {
			item := make(map[string]string)
			for i, header := range headers {
				if i < len(row) {
					item[header] = row[i]
				}
			}
			data = append(data, item)
		}
		return p.PrintData(data)
	}

	w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// PrintData prints data in the configured format
func (p *Printer) PrintData(data interface{}) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(data)
	default:
		return p.printYAML(data)
	}
}

// PrintManifests prints a sequence of objects as a multi-document YAML
// stream, the shape kubectl apply expects.
func (p *Printer) PrintManifests(objects []interface{}) error {
	if p.format == FormatJSON {
		return p.printJSON(objects)
	}
	for i, obj := range objects {
		if i > 0 {
			fmt.Fprintln(p.writer, "---")
		}
		if err := p.printYAML(obj); err != nil {
			return err
		}
	}
	return nil
}

// printYAML prints data as YAML
func (p *Printer) printYAML(data interface{}) error {
	output, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	fmt.Fprint(p.writer, string(output))
	return nil
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(p.writer, string(output))
	return nil
}

// InstanceOutput represents instance info for output
type InstanceOutput struct {
	Name     string `json:"name" yaml:"name"`
	Version  string `json:"version" yaml:"version"`
	Replicas int32  `json:"replicas" yaml:"replicas"`
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
}
