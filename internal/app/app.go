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

// Package app wires configuration, the database lifecycle manager, and the
// reconciler into a running operator.
package app

import (
	"context"
	"fmt"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/odoo-operator/internal/applier"
	"github.com/odoo-operator/internal/controller"
	"github.com/odoo-operator/internal/postgres"
	"github.com/odoo-operator/internal/secret"
	"github.com/odoo-operator/internal/synthesis"
	"github.com/odoo-operator/internal/util"
	webhookv1alpha1 "github.com/odoo-operator/internal/webhook/v1alpha1"
)

// Options tunes application bootstrap.
type Options struct {
	// EnableWebhooks registers the admission gate. Disabled in local runs
	// without serving certificates.
	EnableWebhooks bool

	// SkipDBPing skips the startup connectivity probe. Used by tests.
	SkipDBPing bool
}

// Application holds the wired operator components.
type Application struct {
	Config     Config
	Databases  *postgres.Manager
	Secrets    *secret.Manager
	Reconciler *controller.OdooInstanceReconciler
}

// NewApplication loads configuration, verifies database connectivity, and
// registers the reconciler and webhooks with the manager.
//
// The admin password is resolved through a direct uncached client because
// the manager's cached client is not usable before Start.
func NewApplication(ctx context.Context, mgr ctrl.Manager, opts Options) (*Application, error) {
	log := mgr.GetLogger().WithName("app")

	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	directClient, err := client.New(mgr.GetConfig(), client.Options{Scheme: mgr.GetScheme()})
	if err != nil {
		return nil, fmt.Errorf("creating bootstrap client: %w", err)
	}

	secrets := secret.NewManager(directClient)
	adminPassword, err := cfg.ResolveAdminPassword(ctx, secrets)
	if err != nil {
		return nil, err
	}

	pgConfig := cfg.PostgresConfig(adminPassword)
	pgConfig.Timeouts = util.DefaultTimeoutConfig()
	databases := postgres.NewManager(pgConfig)

	if !opts.SkipDBPing {
		result := util.RetryWithBackoff(ctx, util.ConnectionRetryConfig(), func() error {
			return databases.Ping(ctx)
		})
		if result.LastError != nil {
			return nil, fmt.Errorf("database server unreachable after %d attempts: %w",
				result.Attempts, result.LastError)
		}
		log.Info("Database server reachable", "host", cfg.DBHost, "attempts", result.Attempts)
	}

	bus, err := newLifecycleBus(mgr)
	if err != nil {
		return nil, fmt.Errorf("setting up event bus: %w", err)
	}

	handler := controller.NewHandler(
		applier.New(mgr.GetClient()),
		&synthesis.Synthesizer{Defaults: cfg.SynthesisDefaults()},
		databases,
		secret.NewManager(mgr.GetClient()),
		bus,
		cfg.DBHost,
		cfg.DBPort,
	)

	reconciler := &controller.OdooInstanceReconciler{
		Client:  mgr.GetClient(),
		Handler: handler,
	}
	if err := reconciler.SetupWithManager(mgr, NewInstanceIDPredicate(cfg.InstanceID)); err != nil {
		return nil, fmt.Errorf("setting up reconciler: %w", err)
	}

	if opts.EnableWebhooks {
		if err := webhookv1alpha1.SetupOdooInstanceWebhookWithManager(mgr); err != nil {
			return nil, fmt.Errorf("setting up webhooks: %w", err)
		}
	}

	log.Info("Application wired",
		"instanceID", cfg.InstanceID,
		"defaultImage", cfg.DefaultOdooImage,
		"webhooks", opts.EnableWebhooks)

	return &Application{
		Config:     cfg,
		Databases:  databases,
		Secrets:    secrets,
		Reconciler: reconciler,
	}, nil
}
