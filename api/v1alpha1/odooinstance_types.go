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

package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Phase represents the coarse lifecycle state of an OdooInstance.
type Phase string

const (
	// PhasePending is set when the instance has been accepted but its
	// dependent objects have not yet converged.
	PhasePending Phase = "Pending"

	// PhaseUpdating is set while a spec change is being rolled out.
	PhaseUpdating Phase = "Updating"

	// PhaseRunning is set once all dependent objects and the database
	// identity are converged.
	PhaseRunning Phase = "Running"

	// PhaseFailed is set when reconciliation hit a terminal error.
	PhaseFailed Phase = "Failed"
)

// Condition types surfaced on OdooInstance status.
const (
	// ConditionReady mirrors the phase: True when Running.
	ConditionReady = "Ready"

	// ConditionIngressSkipped is set when ingress is enabled but no
	// hostname was provided, so no route was synthesized.
	ConditionIngressSkipped = "IngressSkipped"
)

// LabelOperatorInstanceID partitions resources across multiple operator
// deployments on the same cluster. Unlabeled resources belong to the
// "default" operator.
const LabelOperatorInstanceID = "apps.odoo-operator.io/operator-instance-id"

// AddonSpec describes one addon repository fetched before the workload starts.
// Repositories are cloned in list order into per-repository scratch volumes.
type AddonSpec struct {
	// Repo is the git URL of the addon repository
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Repo string `json:"repo"`

	// Branch is the branch to clone (shallow)
	// +optional
	Branch string `json:"branch,omitempty"`

	// Path is a subdirectory of the repository to mount into the addons
	// directory. Empty means the repository root.
	// +optional
	Path string `json:"path,omitempty"`
}

// VolumeSpec describes one persistent volume claim managed for the instance.
type VolumeSpec struct {
	// Size is the requested capacity, e.g. "10Gi"
	// +optional
	Size string `json:"size,omitempty"`

	// StorageClass overrides the fleet default storage class
	// +optional
	StorageClass string `json:"storageClass,omitempty"`
}

// StorageSpec groups the two independent volumes of an instance.
type StorageSpec struct {
	// Database is the database-adjacent volume
	// +optional
	Database *VolumeSpec `json:"database,omitempty"`

	// Filestore is the attachment/filestore volume
	// +optional
	Filestore *VolumeSpec `json:"filestore,omitempty"`
}

// IngressSpec describes the external HTTP entry point of an instance.
type IngressSpec struct {
	// Enabled toggles route synthesis. A route also requires Hostname;
	// enabled without a hostname is reported as a non-fatal condition.
	Enabled bool `json:"enabled"`

	// Hostname is the external host the route answers on
	// +optional
	Hostname string `json:"hostname,omitempty"`

	// TLS enables HTTPS termination for Hostname
	// +optional
	TLS *bool `json:"tls,omitempty"`

	// TLSSecret names the certificate secret. Defaults to odoo-<name>-tls.
	// +optional
	TLSSecret string `json:"tlsSecret,omitempty"`

	// IngressClass overrides the fleet default ingress class
	// +optional
	IngressClass string `json:"ingressClass,omitempty"`

	// Annotations are merged onto the synthesized route
	// +optional
	Annotations map[string]string `json:"annotations,omitempty"`
}

// SecretKeyRef points at a single key of a secret in the instance namespace.
type SecretKeyRef struct {
	// Name of the secret
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Name string `json:"name"`

	// Key within the secret
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Key string `json:"key"`
}

// OdooInstanceSpec defines the desired state of OdooInstance.
type OdooInstanceSpec struct {
	// Version is the Odoo release line, e.g. "17.0"
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Version string `json:"version"`

	// Image overrides the fleet default container image
	// +optional
	Image string `json:"image,omitempty"`

	// Replicas is the desired workload replica count
	// +optional
	// +kubebuilder:validation:Minimum=1
	Replicas *int32 `json:"replicas,omitempty"`

	// Resources are the container compute limits and requests.
	// Defaulted by the admission gate when entirely absent.
	// +optional
	Resources *corev1.ResourceRequirements `json:"resources,omitempty"`

	// Storage configures the database and filestore volumes
	// +optional
	Storage *StorageSpec `json:"storage,omitempty"`

	// Addons is an ordered list of addon repositories cloned before start
	// +optional
	Addons []AddonSpec `json:"addons,omitempty"`

	// Ingress configures the external entry point
	// +optional
	Ingress *IngressSpec `json:"ingress,omitempty"`

	// AdminSecret points at the Odoo master password. Defaults to the
	// fleet-wide odoo-admin-credentials/admin-password pair.
	// +optional
	AdminSecret *SecretKeyRef `json:"adminSecret,omitempty"`

	// Env is appended to the workload environment. An entry whose name
	// matches an operator-provided variable replaces it in place.
	// +optional
	Env []corev1.EnvVar `json:"env,omitempty"`
}

// OdooInstanceStatus defines the observed state of OdooInstance.
// It is owned exclusively by the reconciliation controller and is always
// merge-patched, never replaced wholesale.
type OdooInstanceStatus struct {
	// Phase is the coarse lifecycle state
	// +kubebuilder:validation:Enum=Pending;Updating;Running;Failed
	Phase Phase `json:"phase,omitempty"`

	// Ready is true once the instance has converged
	Ready bool `json:"ready,omitempty"`

	// URL is the resolved external URL, derived from the ingress hostname
	// and TLS flag
	// +optional
	URL string `json:"url,omitempty"`

	// Message provides additional information about the current state
	Message string `json:"message,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=odoo
// +kubebuilder:printcolumn:name="Version",type=string,JSONPath=`.spec.version`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Ready",type=boolean,JSONPath=`.status.ready`
// +kubebuilder:printcolumn:name="URL",type=string,JSONPath=`.status.url`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// OdooInstance is the Schema for the odooinstances API.
type OdooInstance struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   OdooInstanceSpec   `json:"spec,omitempty"`
	Status OdooInstanceStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// OdooInstanceList contains a list of OdooInstance.
type OdooInstanceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []OdooInstance `json:"items"`
}

func init() {
	SchemeBuilder.Register(&OdooInstance{}, &OdooInstanceList{})
}
