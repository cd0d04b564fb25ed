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

package util

import (
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
)

// Finalizer names
const (
	// FinalizerInstance blocks deletion until the instance's database and
	// role have been dropped from the shared PostgreSQL server.
	FinalizerInstance = "apps.odoo-operator.io/instance-protection"
)

// Annotation keys
const (
	// AnnotationSkipReconcile temporarily skips reconciliation
	AnnotationSkipReconcile = "apps.odoo-operator.io/skip-reconcile"

	// AnnotationPauseReconcile pauses reconciliation
	AnnotationPauseReconcile = "apps.odoo-operator.io/pause-reconcile"

	// AnnotationLastAppliedSpec stores the JSON-serialized spec from the
	// previous reconciliation, used to log what changed between updates.
	AnnotationLastAppliedSpec = "apps.odoo-operator.io/last-applied-spec"
)

// AddFinalizer adds a finalizer to an object if it doesn't exist
func AddFinalizer(obj client.Object, finalizer string) bool {
	return controllerutil.AddFinalizer(obj, finalizer)
}

// RemoveFinalizer removes a finalizer from an object
func RemoveFinalizer(obj client.Object, finalizer string) bool {
	return controllerutil.RemoveFinalizer(obj, finalizer)
}

// HasFinalizer checks if an object has a specific finalizer
func HasFinalizer(obj client.Object, finalizer string) bool {
	return controllerutil.ContainsFinalizer(obj, finalizer)
}

// IsMarkedForDeletion checks if an object is marked for deletion
func IsMarkedForDeletion(obj client.Object) bool {
	return !obj.GetDeletionTimestamp().IsZero()
}

// ShouldSkipReconcile checks if reconciliation should be skipped
func ShouldSkipReconcile(obj client.Object) bool {
	annotations := obj.GetAnnotations()
	if annotations == nil {
		return false
	}
	return annotations[AnnotationSkipReconcile] == "true" ||
		annotations[AnnotationPauseReconcile] == "true"
}
