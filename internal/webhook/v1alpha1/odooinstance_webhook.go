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
	"context"
	"fmt"
	"regexp"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation/field"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/webhook"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
)

// Quantity formats accepted for container resources. Anything else is
// rejected before it can produce a workload the kubelet refuses.
var (
	memoryPattern = regexp.MustCompile(`^[0-9]+[KMGTPEkmgtpe]i?$`)
	cpuPattern    = regexp.MustCompile(`^[0-9]+m?$`)
)

// Defaulted resource shape for instances that specify none.
var (
	defaultMemoryLimit   = resource.MustParse("512Mi")
	defaultCPULimit      = resource.MustParse("500m")
	defaultMemoryRequest = resource.MustParse("256Mi")
	defaultCPURequest    = resource.MustParse("250m")
)

// SetupOdooInstanceWebhookWithManager registers the admission gate for
// OdooInstance with the manager.
func SetupOdooInstanceWebhookWithManager(mgr ctrl.Manager) error {
	return ctrl.NewWebhookManagedBy(mgr).
		For(&appsv1alpha1.OdooInstance{}).
		WithValidator(&OdooInstanceValidator{}).
		WithDefaulter(&OdooInstanceDefaulter{}).
		Complete()
}

// +kubebuilder:webhook:path=/mutate-apps-odoo-operator-io-v1alpha1-odooinstance,mutating=true,failurePolicy=fail,sideEffects=None,groups=apps.odoo-operator.io,resources=odooinstances,verbs=create;update,versions=v1alpha1,name=modooinstance.kb.io,admissionReviewVersions=v1

// OdooInstanceDefaulter fills the gaps of a sparse spec so the persisted
// object is fully explicit: what you read is exactly what the controller
// will build.
type OdooInstanceDefaulter struct{}

var _ webhook.CustomDefaulter = &OdooInstanceDefaulter{}

// Default implements webhook.CustomDefaulter.
func (d *OdooInstanceDefaulter) Default(ctx context.Context, obj runtime.Object) error {
	instance, ok := obj.(*appsv1alpha1.OdooInstance)
	if !ok {
		return fmt.Errorf("expected OdooInstance, got %T", obj)
	}

	if instance.Spec.Replicas == nil {
		one := int32(1)
		instance.Spec.Replicas = &one
	}

	if instance.Spec.Ingress == nil {
		instance.Spec.Ingress = &appsv1alpha1.IngressSpec{}
	}
	if instance.Spec.Ingress.TLS == nil {
		tls := true
		instance.Spec.Ingress.TLS = &tls
	}

	if instance.Spec.Resources == nil {
		instance.Spec.Resources = &corev1.ResourceRequirements{
			Limits: corev1.ResourceList{
				corev1.ResourceMemory: defaultMemoryLimit,
				corev1.ResourceCPU:    defaultCPULimit,
			},
			Requests: corev1.ResourceList{
				corev1.ResourceMemory: defaultMemoryRequest,
				corev1.ResourceCPU:    defaultCPURequest,
			},
		}
	}

	return nil
}

// +kubebuilder:webhook:path=/validate-apps-odoo-operator-io-v1alpha1-odooinstance,mutating=false,failurePolicy=fail,sideEffects=None,groups=apps.odoo-operator.io,resources=odooinstances,verbs=create;update,versions=v1alpha1,name=vodooinstance.kb.io,admissionReviewVersions=v1

// OdooInstanceValidator rejects specs the controller could only fail on
// later. It is stateless: every rule is decidable from the object alone.
type OdooInstanceValidator struct{}

var _ webhook.CustomValidator = &OdooInstanceValidator{}

// ValidateCreate implements webhook.CustomValidator.
func (v *OdooInstanceValidator) ValidateCreate(ctx context.Context, obj runtime.Object) (admission.Warnings, error) {
	return v.validate(obj)
}

// ValidateUpdate implements webhook.CustomValidator.
func (v *OdooInstanceValidator) ValidateUpdate(ctx context.Context, oldObj, newObj runtime.Object) (admission.Warnings, error) {
	return v.validate(newObj)
}

// ValidateDelete implements webhook.CustomValidator. Deletion is never
// blocked here; teardown protection is the finalizer's job.
func (v *OdooInstanceValidator) ValidateDelete(ctx context.Context, obj runtime.Object) (admission.Warnings, error) {
	return nil, nil
}

func (v *OdooInstanceValidator) validate(obj runtime.Object) (admission.Warnings, error) {
	instance, ok := obj.(*appsv1alpha1.OdooInstance)
	if !ok {
		return nil, fmt.Errorf("expected OdooInstance, got %T", obj)
	}

	var errs field.ErrorList
	specPath := field.NewPath("spec")

	if instance.Spec.Version == "" {
		errs = append(errs, field.Required(specPath.Child("version"), "version is required"))
	}

	if instance.Spec.Replicas != nil && *instance.Spec.Replicas < 1 {
		errs = append(errs, field.Invalid(specPath.Child("replicas"), *instance.Spec.Replicas,
			"replicas must be at least 1"))
	}

	if instance.Spec.Resources != nil {
		errs = append(errs, validateResourceList(specPath.Child("resources", "limits"), instance.Spec.Resources.Limits)...)
		errs = append(errs, validateResourceList(specPath.Child("resources", "requests"), instance.Spec.Resources.Requests)...)
	}

	if instance.Spec.Storage != nil {
		errs = append(errs, validateVolume(specPath.Child("storage", "filestore"), instance.Spec.Storage.Filestore)...)
		errs = append(errs, validateVolume(specPath.Child("storage", "database"), instance.Spec.Storage.Database)...)
	}

	for i, addon := range instance.Spec.Addons {
		if addon.Repo == "" {
			errs = append(errs, field.Required(specPath.Child("addons").Index(i).Child("repo"), "repo is required"))
		}
	}

	if len(errs) == 0 {
		return nil, nil
	}
	return nil, apierrors.NewInvalid(
		schema.GroupKind{Group: appsv1alpha1.GroupVersion.Group, Kind: "OdooInstance"},
		instance.Name, errs)
}

func validateVolume(path *field.Path, vol *appsv1alpha1.VolumeSpec) field.ErrorList {
	if vol == nil || vol.Size == "" {
		return nil
	}
	if _, err := resource.ParseQuantity(vol.Size); err != nil {
		return field.ErrorList{field.Invalid(path.Child("size"), vol.Size,
			"size must be a valid quantity, e.g. 10Gi")}
	}
	return nil
}

func validateResourceList(path *field.Path, list corev1.ResourceList) field.ErrorList {
	var errs field.ErrorList
	for name, quantity := range list {
		switch name {
		case corev1.ResourceMemory:
			if !memoryPattern.MatchString(quantity.String()) {
				errs = append(errs, field.Invalid(path.Child(string(name)), quantity.String(),
					"memory must be a whole number with a unit suffix, e.g. 512Mi"))
			}
		case corev1.ResourceCPU:
			if !cpuPattern.MatchString(quantity.String()) {
				errs = append(errs, field.Invalid(path.Child(string(name)), quantity.String(),
					"cpu must be a whole number of cores or millicores, e.g. 500m"))
			}
		}
	}
	return errs
}
