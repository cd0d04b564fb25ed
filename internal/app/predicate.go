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
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
)

// defaultFleetMember is the operator id that owns unlabeled instances, so a
// single-operator install needs no labels at all.
const defaultFleetMember = "default"

// NewInstanceIDPredicate builds the event filter for one member of an
// operator fleet. Several operator processes can share a cluster; each
// reconciles only the instances whose operator-instance-id label names it.
// The update filter looks at the new object: a relabeled instance stops
// being ours the moment the label changes.
func NewInstanceIDPredicate(instanceID string) predicate.Funcs {
	return predicate.NewPredicateFuncs(func(obj client.Object) bool {
		if obj == nil {
			return false
		}
		assigned, labeled := obj.GetLabels()[appsv1alpha1.LabelOperatorInstanceID]
		if !labeled {
			return instanceID == defaultFleetMember
		}
		return assigned == instanceID
	})
}
