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

package logging

import (
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// Builder registers a controller whose reconciler is wrapped with the pass
// token decorator. Operator controllers go through it instead of
// ctrl.NewControllerManagedBy so the correlation field is never forgotten
// on a new controller.
type Builder struct {
	mgr     ctrl.Manager
	primary client.Object
	name    string
	owned   []client.Object
	filters []predicate.Predicate
}

// BuildController starts a Builder for the given manager.
func BuildController(mgr ctrl.Manager) *Builder {
	return &Builder{mgr: mgr}
}

// For sets the resource the controller reconciles.
func (b *Builder) For(obj client.Object) *Builder {
	b.primary = obj
	return b
}

// Named sets the controller name used in logs and metrics.
func (b *Builder) Named(name string) *Builder {
	b.name = name
	return b
}

// Owns watches a secondary resource and enqueues its owner.
func (b *Builder) Owns(obj client.Object) *Builder {
	b.owned = append(b.owned, obj)
	return b
}

// WithPredicates filters which events reach the work queue.
func (b *Builder) WithPredicates(filters ...predicate.Predicate) *Builder {
	b.filters = append(b.filters, filters...)
	return b
}

// Complete wraps the reconciler in the pass token decorator and registers
// the controller with the manager.
func (b *Builder) Complete(r reconcile.Reconciler) error {
	registration := ctrl.NewControllerManagedBy(b.mgr).
		For(b.primary).
		Named(b.name)
	for _, obj := range b.owned {
		registration = registration.Owns(obj)
	}
	for _, filter := range b.filters {
		registration = registration.WithEventFilter(filter)
	}
	return registration.Complete(&tokenized{next: r})
}
