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

package controller

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
	"github.com/odoo-operator/internal/applier"
	"github.com/odoo-operator/internal/eventbus"
	"github.com/odoo-operator/internal/metrics"
	"github.com/odoo-operator/internal/postgres"
	"github.com/odoo-operator/internal/secret"
	"github.com/odoo-operator/internal/synthesis"
)

// Handler carries out the side effects of one reconciliation: database
// lifecycle, credential mirroring, and dependent-object apply. It holds no
// per-instance state; everything flows through arguments.
type Handler struct {
	applier     *applier.Applier
	synthesizer *synthesis.Synthesizer
	databases   *postgres.Manager
	secrets     *secret.Manager
	bus         eventbus.Bus
	dbHost      string
	dbPort      int32
}

// NewHandler wires a Handler from its collaborators. dbHost and dbPort are
// the shared server coordinates mirrored into each credential secret.
func NewHandler(a *applier.Applier, s *synthesis.Synthesizer, db *postgres.Manager, secrets *secret.Manager, bus eventbus.Bus, dbHost string, dbPort int32) *Handler {
	return &Handler{
		applier:     a,
		synthesizer: s,
		databases:   db,
		secrets:     secrets,
		bus:         bus,
		dbHost:      dbHost,
		dbPort:      dbPort,
	}
}

// publish delivers a lifecycle event to observers. Observer failures are
// logged and dropped; they never fail a reconciliation.
func (h *Handler) publish(ctx context.Context, event eventbus.Event) {
	if err := h.bus.Publish(ctx, event); err != nil {
		logf.FromContext(ctx).Error(err, "Event handler failed", "event", event.EventName())
	}
}

// OwnerOf resolves the owner identity threaded through synthesis and
// credential mirroring.
func OwnerOf(instance *appsv1alpha1.OdooInstance) synthesis.Owner {
	return synthesis.Owner{
		Name:      instance.Name,
		Namespace: instance.Namespace,
		UID:       instance.UID,
	}
}

// ensureDatabase aligns the external role and database with the instance and
// mirrors the credentials into the namespace. An existing mirrored password
// is reused so unrelated spec updates never rotate credentials.
func (h *Handler) ensureDatabase(ctx context.Context, owner synthesis.Owner) error {
	id := postgres.DeriveIdentity(owner.Name, owner.Namespace)

	password, found, err := h.secrets.ExistingPassword(ctx, owner.Namespace, owner.Name)
	if err != nil {
		return err
	}
	if !found {
		password, err = secret.GeneratePassword()
		if err != nil {
			return err
		}
	}

	if err := h.databases.Provision(ctx, id, password); err != nil {
		metrics.RecordDatabaseOperation(metrics.OperationProvision, owner.Namespace, metrics.StatusFailure)
		return err
	}
	metrics.RecordDatabaseOperation(metrics.OperationProvision, owner.Namespace, metrics.StatusSuccess)
	h.publish(ctx, eventbus.NewDatabaseProvisioned(owner.Name, owner.Namespace, id.Database, id.Role))

	if err := h.secrets.EnsureCredentialSecret(ctx, owner, secret.Credentials{
		Host:     h.dbHost,
		Port:     h.dbPort,
		Username: id.Role,
		Password: password,
		Database: id.Database,
	}); err != nil {
		return err
	}
	h.publish(ctx, eventbus.NewCredentialsMirrored(owner.Name, owner.Namespace, synthesis.CredentialSecretName(owner.Name)))
	return nil
}

// OnCreate handles first-time reconciliation: provision the database
// identity, mirror credentials, then create every dependent object in
// synthesis order. Objects that already exist are left untouched.
func (h *Handler) OnCreate(ctx context.Context, instance *appsv1alpha1.OdooInstance) (synthesis.Result, error) {
	owner := OwnerOf(instance)

	if err := h.ensureDatabase(ctx, owner); err != nil {
		return synthesis.Result{}, err
	}

	result := h.synthesizer.Synthesize(owner, &instance.Spec)
	for _, obj := range result.Objects {
		outcome, err := h.applier.Create(ctx, obj)
		if err != nil {
			return result, err
		}
		metrics.RecordApply(kindOf(obj), outcome.String(), owner.Namespace)
	}
	h.publish(ctx, eventbus.NewInstanceConverged(owner.Name, owner.Namespace, len(result.Objects)))
	return result, nil
}

// OnUpdate handles repeat reconciliation: re-verify the database identity,
// then converge every dependent object onto its desired shape. A route that
// is no longer desired (ingress disabled, hostname removed) is deleted
// explicitly; ownership alone only covers instance deletion.
func (h *Handler) OnUpdate(ctx context.Context, instance *appsv1alpha1.OdooInstance) (synthesis.Result, error) {
	owner := OwnerOf(instance)

	if err := h.ensureDatabase(ctx, owner); err != nil {
		return synthesis.Result{}, err
	}

	result := h.synthesizer.Synthesize(owner, &instance.Spec)
	for _, obj := range result.Objects {
		outcome, err := h.applier.Update(ctx, obj)
		if err != nil {
			return result, err
		}
		metrics.RecordApply(kindOf(obj), outcome.String(), owner.Namespace)
	}

	if !routeDesired(result) {
		outcome, err := h.applier.Delete(ctx, &networkingv1.Ingress{
			ObjectMeta: metav1.ObjectMeta{
				Name:      synthesis.WorkloadName(owner.Name),
				Namespace: owner.Namespace,
			},
		})
		if err != nil {
			return result, err
		}
		if outcome == applier.OutcomeDeleted {
			metrics.RecordApply("Ingress", outcome.String(), owner.Namespace)
		}
	}
	h.publish(ctx, eventbus.NewInstanceConverged(owner.Name, owner.Namespace, len(result.Objects)))
	return result, nil
}

// OnDelete tears down the external database identity. Failures are returned
// for logging but the caller proceeds with finalizer removal regardless:
// an unreachable server must never wedge instance deletion.
func (h *Handler) OnDelete(ctx context.Context, instance *appsv1alpha1.OdooInstance) error {
	log := logf.FromContext(ctx)
	id := postgres.DeriveIdentity(instance.Name, instance.Namespace)

	if err := h.databases.Deprovision(ctx, id); err != nil {
		metrics.RecordDatabaseOperation(metrics.OperationDeprovision, instance.Namespace, metrics.StatusFailure)
		log.Error(err, "Failed to deprovision database, continuing with deletion",
			"database", id.Database, "role", id.Role)
		return err
	}
	metrics.RecordDatabaseOperation(metrics.OperationDeprovision, instance.Namespace, metrics.StatusSuccess)
	h.publish(ctx, eventbus.NewDatabaseDeprovisioned(instance.Name, instance.Namespace, id.Database, id.Role))
	return nil
}

// routeDesired reports whether the synthesis pass produced an ingress route.
func routeDesired(result synthesis.Result) bool {
	for _, obj := range result.Objects {
		if _, ok := obj.(*networkingv1.Ingress); ok {
			return true
		}
	}
	return false
}

// kindOf returns a stable kind label for apply metrics without requiring
// populated TypeMeta.
func kindOf(obj client.Object) string {
	switch obj.(type) {
	case *corev1.ConfigMap:
		return "ConfigMap"
	case *corev1.Secret:
		return "Secret"
	case *corev1.PersistentVolumeClaim:
		return "PersistentVolumeClaim"
	case *corev1.Service:
		return "Service"
	case *appsv1.Deployment:
		return "Deployment"
	case *networkingv1.Ingress:
		return "Ingress"
	}
	return obj.GetObjectKind().GroupVersionKind().Kind
}
