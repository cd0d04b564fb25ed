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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odoo-operator/cmd/odooctl/internal"
	webhookv1alpha1 "github.com/odoo-operator/internal/webhook/v1alpha1"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate OdooInstance manifests",
	Long: `Validate OdooInstance manifests against the same rules the admission
gate applies, after filling in admission defaults. Exits non-zero if any
manifest is invalid.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "filename", "f", "", "YAML file containing OdooInstance manifests (required)")
	_ = validateCmd.MarkFlagRequired("filename")
}

func runValidate(cmd *cobra.Command, args []string) error {
	instances, err := internal.LoadFile(validateFile)
	if err != nil {
		return err
	}
	printVerbose("Loaded %d manifest(s) from %s", len(instances), validateFile)

	ctx := context.Background()
	defaulter := &webhookv1alpha1.OdooInstanceDefaulter{}
	validator := &webhookv1alpha1.OdooInstanceValidator{}

	printer := internal.NewPrinter(internal.ParseOutputFormat(outputFormat), os.Stdout)
	var rows [][]string
	invalid := 0
	for _, instance := range instances {
		if err := defaulter.Default(ctx, instance); err != nil {
			return err
		}
		result := "valid"
		if _, err := validator.ValidateCreate(ctx, instance); err != nil {
			result = err.Error()
			invalid++
		}
		rows = append(rows, []string{instance.Namespace, instance.Name, result})
	}

	if err := printer.PrintTable([]string{"NAMESPACE", "NAME", "RESULT"}, rows); err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d manifest(s) invalid", invalid, len(instances))
	}
	return nil
}
