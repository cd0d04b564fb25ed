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

// Package synthesis derives the desired dependent objects of an OdooInstance.
// Synthesis is a pure function of (owner, spec, defaults): no client calls,
// no randomness, no clock. The reconciliation controller resolves the owner
// identity once per call and threads it in here.
package synthesis

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
)

// Owner is the resolved identity of the owning OdooInstance, captured once
// per reconciliation.
type Owner struct {
	Name      string
	Namespace string
	UID       types.UID
}

// Reference returns the controller owner reference placed on every
// synthesized object so the store's garbage collector cascades deletion.
func (o Owner) Reference() metav1.OwnerReference {
	controller := true
	block := true
	return metav1.OwnerReference{
		APIVersion:         appsv1alpha1.GroupVersion.String(),
		Kind:               "OdooInstance",
		Name:               o.Name,
		UID:                o.UID,
		Controller:         &controller,
		BlockOwnerDeletion: &block,
	}
}

// Defaults carries fleet-wide fallbacks resolved from the operator
// environment at startup.
type Defaults struct {
	Image        string
	StorageClass string
	IngressClass string
}

// Synthesizer turns an OdooInstance spec into its dependent objects.
type Synthesizer struct {
	Defaults Defaults
}

// Result is the ordered outcome of one synthesis pass.
type Result struct {
	// Objects in apply order: volumes and config before the workload, the
	// workload and endpoint before the route.
	Objects []client.Object

	// IngressSkipped is true when ingress was enabled without a hostname.
	// Non-fatal: reported as a condition, never an error.
	IngressSkipped bool
}

// Synthesize produces the full dependent-object set for the instance.
// Fixed order: filestore volume, database volume, config, workload,
// endpoint, route (conditional on ingress enabled with a hostname).
func (s *Synthesizer) Synthesize(owner Owner, spec *appsv1alpha1.OdooInstanceSpec) Result {
	var res Result

	res.Objects = append(res.Objects,
		s.BuildFilestoreVolume(owner, spec),
		s.BuildDatabaseVolume(owner, spec),
		s.BuildConfig(owner),
		s.BuildWorkload(owner, spec),
		s.BuildEndpoint(owner),
	)

	if spec.Ingress != nil && spec.Ingress.Enabled {
		if spec.Ingress.Hostname == "" {
			res.IngressSkipped = true
		} else {
			res.Objects = append(res.Objects, s.BuildRoute(owner, spec))
		}
	}
	return res
}

// objectMeta builds the shared metadata for a synthesized object.
func (s *Synthesizer) objectMeta(owner Owner, name, component string) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:            name,
		Namespace:       owner.Namespace,
		Labels:          Labels(owner.Name, component),
		OwnerReferences: []metav1.OwnerReference{owner.Reference()},
	}
}
