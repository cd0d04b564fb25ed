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

// Package applier provides the idempotent create/update primitive against
// the cluster object store. "Already exists" and "not found" are classified
// outcomes, not errors: callers branch on the Outcome instead of parsing
// error text.
package applier

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/odoo-operator/internal/service"
)

// Outcome classifies the result of an apply operation.
type Outcome int

const (
	// OutcomeCreated means the object did not exist and was created.
	OutcomeCreated Outcome = iota

	// OutcomeAlreadyExists means create found the object present. Treated
	// as success with no mutation: convergence is the update path's job.
	OutcomeAlreadyExists

	// OutcomeUpdated means the existing object was replaced with the
	// desired shape.
	OutcomeUpdated

	// OutcomeAbsent means a delete found nothing to remove.
	OutcomeAbsent

	// OutcomeDeleted means the object was removed.
	OutcomeDeleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already-exists"
	case OutcomeUpdated:
		return "updated"
	case OutcomeAbsent:
		return "absent"
	case OutcomeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Applier applies desired objects against the store.
type Applier struct {
	client client.Client
}

// New creates an Applier backed by the given client.
func New(c client.Client) *Applier {
	return &Applier{client: c}
}

// Create attempts to create the object. An existing object is success with
// no mutation.
func (a *Applier) Create(ctx context.Context, obj client.Object) (Outcome, error) {
	err := a.client.Create(ctx, obj)
	if err == nil {
		return OutcomeCreated, nil
	}
	if apierrors.IsAlreadyExists(err) {
		return OutcomeAlreadyExists, nil
	}
	return OutcomeAlreadyExists, service.NewStoreError("create", objKey(obj), err)
}

// Update replaces the stored object with the desired shape. A missing object
// falls back to create. Fields the store manages itself (cluster IPs, node
// ports) are carried over from the live object so an update never regresses
// them. Volume claims are create-if-absent only: a bound claim's spec is
// immutable except for the storage request, and replacing it would clear the
// binder-assigned volumeName.
func (a *Applier) Update(ctx context.Context, obj client.Object) (Outcome, error) {
	existing := obj.DeepCopyObject().(client.Object)
	err := a.client.Get(ctx, client.ObjectKeyFromObject(obj), existing)
	if err != nil {
		if apierrors.IsNotFound(err) {
			if createErr := a.client.Create(ctx, obj); createErr != nil {
				return OutcomeCreated, service.NewStoreError("create", objKey(obj), createErr)
			}
			return OutcomeCreated, nil
		}
		return OutcomeUpdated, service.NewStoreError("get", objKey(obj), err)
	}

	if _, ok := obj.(*corev1.PersistentVolumeClaim); ok {
		return OutcomeAlreadyExists, nil
	}

	obj.SetResourceVersion(existing.GetResourceVersion())
	preserveStoreManaged(existing, obj)

	if err := a.client.Update(ctx, obj); err != nil {
		return OutcomeUpdated, service.NewStoreError("update", objKey(obj), err)
	}
	return OutcomeUpdated, nil
}

// Delete removes the object. A missing object is success.
func (a *Applier) Delete(ctx context.Context, obj client.Object) (Outcome, error) {
	err := a.client.Delete(ctx, obj)
	if err == nil {
		return OutcomeDeleted, nil
	}
	if apierrors.IsNotFound(err) {
		return OutcomeAbsent, nil
	}
	return OutcomeAbsent, service.NewStoreError("delete", objKey(obj), err)
}

// preserveStoreManaged copies store-assigned fields from the live object
// onto the desired one before an update.
func preserveStoreManaged(existing, desired client.Object) {
	liveSvc, ok := existing.(*corev1.Service)
	if !ok {
		return
	}
	desiredSvc, ok := desired.(*corev1.Service)
	if !ok {
		return
	}

	desiredSvc.Spec.ClusterIP = liveSvc.Spec.ClusterIP
	desiredSvc.Spec.ClusterIPs = liveSvc.Spec.ClusterIPs
	for i := range desiredSvc.Spec.Ports {
		for _, livePort := range liveSvc.Spec.Ports {
			if desiredSvc.Spec.Ports[i].Name == livePort.Name && desiredSvc.Spec.Ports[i].NodePort == 0 {
				desiredSvc.Spec.Ports[i].NodePort = livePort.NodePort
			}
		}
	}
}

func objKey(obj client.Object) string {
	return obj.GetNamespace() + "/" + obj.GetName()
}
