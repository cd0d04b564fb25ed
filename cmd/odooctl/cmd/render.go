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
	"os"

	"github.com/spf13/cobra"

	"github.com/odoo-operator/cmd/odooctl/internal"
	"github.com/odoo-operator/internal/postgres"
	"github.com/odoo-operator/internal/synthesis"
	webhookv1alpha1 "github.com/odoo-operator/internal/webhook/v1alpha1"
)

var (
	renderFile         string
	renderImage        string
	renderStorageClass string
	renderIngressClass string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the dependent objects of OdooInstance manifests",
	Long: `Render the deployment, services, volumes, configuration, and route the
operator would create for each manifest, as a multi-document YAML stream.

The credential secret is omitted: its password only exists once the
operator has provisioned the database.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFile, "filename", "f", "", "YAML file containing OdooInstance manifests (required)")
	renderCmd.Flags().StringVar(&renderImage, "default-image", "odoo:17.0", "Fleet default container image")
	renderCmd.Flags().StringVar(&renderStorageClass, "default-storage-class", "standard", "Fleet default storage class")
	renderCmd.Flags().StringVar(&renderIngressClass, "default-ingress-class", "nginx", "Fleet default ingress class")
	_ = renderCmd.MarkFlagRequired("filename")
}

func runRender(cmd *cobra.Command, args []string) error {
	instances, err := internal.LoadFile(renderFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	defaulter := &webhookv1alpha1.OdooInstanceDefaulter{}
	synthesizer := &synthesis.Synthesizer{Defaults: synthesis.Defaults{
		Image:        renderImage,
		StorageClass: renderStorageClass,
		IngressClass: renderIngressClass,
	}}

	var objects []interface{}
	for _, instance := range instances {
		if err := defaulter.Default(ctx, instance); err != nil {
			return err
		}

		id := postgres.DeriveIdentity(instance.Name, instance.Namespace)
		printVerbose("Instance %s/%s: database %s, role %s",
			instance.Namespace, instance.Name, id.Database, id.Role)

		owner := synthesis.Owner{
			Name:      instance.Name,
			Namespace: instance.Namespace,
			UID:       instance.UID,
		}
		result := synthesizer.Synthesize(owner, &instance.Spec)
		if result.IngressSkipped {
			printVerbose("Instance %s/%s: ingress enabled without hostname, route skipped",
				instance.Namespace, instance.Name)
		}
		for _, obj := range result.Objects {
			objects = append(objects, obj)
		}
	}

	printer := internal.NewPrinter(internal.ParseOutputFormat(outputFormat), os.Stdout)
	return printer.PrintManifests(objects)
}
