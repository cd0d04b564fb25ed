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

package synthesis

// Derived object names. All are pure functions of the instance name so that
// repeated synthesis of the same spec yields byte-identical descriptors.

// WorkloadName returns the name of the deployment, service and ingress.
func WorkloadName(instance string) string {
	return "odoo-" + instance
}

// ConfigName returns the name of the configuration ConfigMap.
func ConfigName(instance string) string {
	return "odoo-config-" + instance
}

// FilestoreVolumeName returns the name of the filestore PVC.
func FilestoreVolumeName(instance string) string {
	return "odoo-filestore-" + instance
}

// DatabaseVolumeName returns the name of the database-adjacent PVC.
func DatabaseVolumeName(instance string) string {
	return "odoo-db-" + instance
}

// CredentialSecretName returns the name of the mirrored database
// credential secret.
func CredentialSecretName(instance string) string {
	return "odoo-db-credentials-" + instance
}

// DefaultTLSSecretName returns the certificate secret used when the spec
// does not name one.
func DefaultTLSSecretName(instance string) string {
	return "odoo-" + instance + "-tls"
}

// Labels returns the common label set for a dependent object. component may
// be empty for objects that do not carry a component label.
func Labels(instance, component string) map[string]string {
	labels := map[string]string{
		"app.kubernetes.io/name":       "odoo",
		"app.kubernetes.io/instance":   instance,
		"app.kubernetes.io/managed-by": "odoo-operator",
	}
	if component != "" {
		labels["app.kubernetes.io/component"] = component
	}
	return labels
}

// SelectorLabels returns the subset of labels used for workload selection.
// Selectors are immutable on deployments so this set must never grow.
func SelectorLabels(instance string) map[string]string {
	return map[string]string{
		"app.kubernetes.io/name":     "odoo",
		"app.kubernetes.io/instance": instance,
	}
}
