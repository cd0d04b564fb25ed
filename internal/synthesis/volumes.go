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

package synthesis

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
)

const (
	defaultFilestoreSize = "10Gi"
	defaultDatabaseSize  = "10Gi"
)

func (s *Synthesizer) buildVolume(owner Owner, name, component, fallback string, vol *appsv1alpha1.VolumeSpec) *corev1.PersistentVolumeClaim {
	storageClass := s.Defaults.StorageClass
	size := fallback
	if vol != nil {
		if vol.Size != "" {
			size = vol.Size
		}
		if vol.StorageClass != "" {
			storageClass = vol.StorageClass
		}
	}

	// The admission gate rejects malformed sizes; an object that bypassed it
	// (webhook disabled, direct etcd write) still must not crash synthesis.
	request, err := resource.ParseQuantity(size)
	if err != nil {
		request = resource.MustParse(fallback)
	}

	pvc := &corev1.PersistentVolumeClaim{
		ObjectMeta: s.objectMeta(owner, name, component),
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: request,
				},
			},
		},
	}
	if storageClass != "" {
		pvc.Spec.StorageClassName = &storageClass
	}
	return pvc
}

// BuildFilestoreVolume synthesizes the attachment/filestore PVC.
func (s *Synthesizer) BuildFilestoreVolume(owner Owner, spec *appsv1alpha1.OdooInstanceSpec) *corev1.PersistentVolumeClaim {
	var vol *appsv1alpha1.VolumeSpec
	if spec.Storage != nil {
		vol = spec.Storage.Filestore
	}
	return s.buildVolume(owner, FilestoreVolumeName(owner.Name), "filestore", defaultFilestoreSize, vol)
}

// BuildDatabaseVolume synthesizes the database-adjacent PVC.
func (s *Synthesizer) BuildDatabaseVolume(owner Owner, spec *appsv1alpha1.OdooInstanceSpec) *corev1.PersistentVolumeClaim {
	var vol *appsv1alpha1.VolumeSpec
	if spec.Storage != nil {
		vol = spec.Storage.Database
	}
	return s.buildVolume(owner, DatabaseVolumeName(owner.Name), "database", defaultDatabaseSize, vol)
}
