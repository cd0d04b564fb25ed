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

package app

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/odoo-operator/internal/postgres"
	"github.com/odoo-operator/internal/secret"
	"github.com/odoo-operator/internal/service"
	"github.com/odoo-operator/internal/synthesis"
)

// Environment variable names.
const (
	EnvDBHost                   = "DB_HOST"
	EnvDBPort                   = "DB_PORT"
	EnvDBAdminUser              = "DB_ADMIN_USER"
	EnvDBAdminPasswordSecret    = "DB_ADMIN_PASSWORD_SECRET"
	EnvDBAdminPasswordSecretKey = "DB_ADMIN_PASSWORD_SECRET_KEY"
	EnvDBAdminPasswordSecretNS  = "DB_ADMIN_PASSWORD_SECRET_NAMESPACE"
	EnvDefaultOdooImage         = "DEFAULT_ODOO_IMAGE"
	EnvDefaultStorageClass      = "DEFAULT_STORAGE_CLASS"
	EnvDefaultIngressClass      = "DEFAULT_INGRESS_CLASS"
	EnvOperatorInstanceID       = "OPERATOR_INSTANCE_ID"
	EnvPodNamespace             = "POD_NAMESPACE"
)

// Config holds operator-wide configuration resolved from the environment at
// process start. The admin password itself is not stored here; it is read
// from the referenced secret via ResolveAdminPassword.
type Config struct {
	// DBHost is the shared PostgreSQL server all instances point at.
	DBHost string

	// DBPort is the PostgreSQL port (default 5432).
	DBPort int32

	// DBAdminUser is the administrator role used for provisioning
	// (default "postgres").
	DBAdminUser string

	// DBAdminPasswordSecret names the secret holding the administrator
	// password.
	DBAdminPasswordSecret string

	// DBAdminPasswordSecretKey is the key inside that secret
	// (default "password").
	DBAdminPasswordSecretKey string

	// DBAdminPasswordSecretNamespace is the secret's namespace. Defaults
	// to the operator's own namespace from POD_NAMESPACE, then "default".
	DBAdminPasswordSecretNamespace string

	// DefaultOdooImage is used when an instance names neither an image
	// nor a version (default "odoo:17.0").
	DefaultOdooImage string

	// DefaultStorageClass is used for volumes that don't name their own
	// class (default "standard").
	DefaultStorageClass string

	// DefaultIngressClass is used for routes that don't name their own
	// class (default "nginx").
	DefaultIngressClass string

	// InstanceID partitions resources across multiple operators on the
	// same cluster. The default value "default" also manages unlabeled
	// resources.
	InstanceID string
}

// LoadConfig reads operator configuration from the environment, applying
// defaults for everything optional.
func LoadConfig() (Config, error) {
	cfg := Config{
		DBHost:                         os.Getenv(EnvDBHost),
		DBPort:                         5432,
		DBAdminUser:                    envOr(EnvDBAdminUser, "postgres"),
		DBAdminPasswordSecret:          os.Getenv(EnvDBAdminPasswordSecret),
		DBAdminPasswordSecretKey:       envOr(EnvDBAdminPasswordSecretKey, "password"),
		DBAdminPasswordSecretNamespace: envOr(EnvDBAdminPasswordSecretNS, envOr(EnvPodNamespace, "default")),
		DefaultOdooImage:               envOr(EnvDefaultOdooImage, "odoo:17.0"),
		DefaultStorageClass:            envOr(EnvDefaultStorageClass, "standard"),
		DefaultIngressClass:            envOr(EnvDefaultIngressClass, "nginx"),
		InstanceID:                     envOr(EnvOperatorInstanceID, "default"),
	}

	if raw := os.Getenv(EnvDBPort); raw != "" {
		port, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, service.NewValidationError(EnvDBPort, fmt.Sprintf("invalid port %q", raw))
		}
		cfg.DBPort = int32(port)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required settings are present.
func (c Config) Validate() error {
	if c.DBHost == "" {
		return service.NewValidationError(EnvDBHost, "required")
	}
	if c.DBAdminPasswordSecret == "" {
		return service.NewValidationError(EnvDBAdminPasswordSecret, "required")
	}
	return nil
}

// ResolveAdminPassword reads the administrator password from the referenced
// secret. Called once at startup; a missing secret is a fatal configuration
// error, not something reconciliation can repair.
func (c Config) ResolveAdminPassword(ctx context.Context, secrets *secret.Manager) (string, error) {
	password, err := secrets.GetKeyValue(ctx, c.DBAdminPasswordSecretNamespace, c.DBAdminPasswordSecret, c.DBAdminPasswordSecretKey)
	if err != nil {
		return "", fmt.Errorf("resolving admin password from %s/%s: %w",
			c.DBAdminPasswordSecretNamespace, c.DBAdminPasswordSecret, err)
	}
	return password, nil
}

// PostgresConfig builds the lifecycle manager's connection config with the
// resolved administrator password.
func (c Config) PostgresConfig(adminPassword string) postgres.Config {
	return postgres.Config{
		Host:          c.DBHost,
		Port:          c.DBPort,
		AdminUser:     c.DBAdminUser,
		AdminPassword: adminPassword,
	}
}

// SynthesisDefaults builds the fleet defaults threaded into resource
// synthesis.
func (c Config) SynthesisDefaults() synthesis.Defaults {
	return synthesis.Defaults{
		Image:        c.DefaultOdooImage,
		StorageClass: c.DefaultStorageClass,
		IngressClass: c.DefaultIngressClass,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
