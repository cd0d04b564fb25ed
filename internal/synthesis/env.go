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

import (
	corev1 "k8s.io/api/core/v1"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
)

// Environment variable names injected into the workload. The database
// connection values come from the mirrored credential secret; the config
// file references them as $ODOO_* placeholder tokens resolved by Odoo at
// startup.
const (
	EnvDBHost        = "ODOO_DB_HOST"
	EnvDBPort        = "ODOO_DB_PORT"
	EnvDBUser        = "ODOO_DB_USER"
	EnvDBPassword    = "ODOO_DB_PASSWORD"
	EnvDBName        = "ODOO_DB_NAME"
	EnvAdminPassword = "ODOO_ADMIN_PASSWORD"
)

// Credential secret keys. Individually encoded, never a connection-string
// blob, so a partial key read cannot silently yield malformed data.
const (
	SecretKeyHost     = "host"
	SecretKeyPort     = "port"
	SecretKeyUsername = "username"
	SecretKeyPassword = "password"
	SecretKeyDatabase = "database"
)

// Fleet-wide default for the Odoo master password secret, used when the
// spec does not name one.
const (
	DefaultAdminSecretName = "odoo-admin-credentials"
	DefaultAdminSecretKey  = "admin-password"
)

func secretEnv(name, secretName, key string) corev1.EnvVar {
	return corev1.EnvVar{
		Name: name,
		ValueFrom: &corev1.EnvVarSource{
			SecretKeyRef: &corev1.SecretKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: secretName},
				Key:                  key,
			},
		},
	}
}

// BuildEnv assembles the workload environment: five database-connection
// references from the credential secret, the admin-password reference, then
// the spec's custom entries overlaid last-write-wins. A custom entry whose
// name matches an existing one replaces it in place; order is otherwise
// preserved.
func BuildEnv(instance string, adminSecret *appsv1alpha1.SecretKeyRef, custom []corev1.EnvVar) []corev1.EnvVar {
	credSecret := CredentialSecretName(instance)

	adminName := DefaultAdminSecretName
	adminKey := DefaultAdminSecretKey
	if adminSecret != nil {
		adminName = adminSecret.Name
		adminKey = adminSecret.Key
	}

	env := []corev1.EnvVar{
		secretEnv(EnvDBHost, credSecret, SecretKeyHost),
		secretEnv(EnvDBPort, credSecret, SecretKeyPort),
		secretEnv(EnvDBUser, credSecret, SecretKeyUsername),
		secretEnv(EnvDBPassword, credSecret, SecretKeyPassword),
		secretEnv(EnvDBName, credSecret, SecretKeyDatabase),
		secretEnv(EnvAdminPassword, adminName, adminKey),
	}

	for _, entry := range custom {
		replaced := false
		for i := range env {
			if env[i].Name == entry.Name {
				env[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			env = append(env, entry)
		}
	}
	return env
}
