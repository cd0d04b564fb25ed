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
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
)

const (
	// OdooHTTPPort is the main web port inside the container.
	OdooHTTPPort = 8069

	// OdooLongpollingPort serves websocket/longpolling traffic.
	OdooLongpollingPort = 8072

	healthPath = "/web/health"

	filestoreMountPath = "/var/lib/odoo"
	configMountPath    = "/etc/odoo"

	addonFetchImage = "alpine/git"
)

// Image resolves the container image: explicit spec image, else the version
// mapped onto the stock image, else the fleet default.
func (s *Synthesizer) Image(spec *appsv1alpha1.OdooInstanceSpec) string {
	if spec.Image != "" {
		return spec.Image
	}
	if spec.Version != "" {
		return "odoo:" + spec.Version
	}
	return s.Defaults.Image
}

func addonVolumeName(index int) string {
	return fmt.Sprintf("addons-%d", index)
}

// addonFetchTask builds the init container that shallow-clones one addon
// repository and stages its subpath into the scratch volume.
func addonFetchTask(index int, addon appsv1alpha1.AddonSpec) corev1.Container {
	branch := addon.Branch
	if branch == "" {
		branch = "master"
	}
	src := "/tmp/repo"
	if addon.Path != "" {
		src = src + "/" + addon.Path
	}
	script := fmt.Sprintf("git clone --depth 1 --branch %s %s /tmp/repo && cp -r %s/. /addons/", branch, addon.Repo, src)
	return corev1.Container{
		Name:    fmt.Sprintf("fetch-addon-%d", index),
		Image:   addonFetchImage,
		Command: []string{"sh", "-c", script},
		VolumeMounts: []corev1.VolumeMount{
			{Name: addonVolumeName(index), MountPath: "/addons"},
		},
	}
}

// BuildWorkload synthesizes the Odoo deployment. Addon repositories become
// ordered init-stage fetch tasks, one per repository, each staging into a
// distinct scratch volume mounted under the addons path.
func (s *Synthesizer) BuildWorkload(owner Owner, spec *appsv1alpha1.OdooInstanceSpec) *appsv1.Deployment {
	replicas := int32(1)
	if spec.Replicas != nil {
		replicas = *spec.Replicas
	}

	volumes := []corev1.Volume{
		{
			Name: "filestore",
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
					ClaimName: FilestoreVolumeName(owner.Name),
				},
			},
		},
		{
			Name: "config",
			VolumeSource: corev1.VolumeSource{
				ConfigMap: &corev1.ConfigMapVolumeSource{
					LocalObjectReference: corev1.LocalObjectReference{Name: ConfigName(owner.Name)},
				},
			},
		},
	}
	mounts := []corev1.VolumeMount{
		{Name: "filestore", MountPath: filestoreMountPath},
		{Name: "config", MountPath: configMountPath},
	}

	var initContainers []corev1.Container
	for i, addon := range spec.Addons {
		volumes = append(volumes, corev1.Volume{
			Name:         addonVolumeName(i),
			VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}},
		})
		initContainers = append(initContainers, addonFetchTask(i, addon))
		mounts = append(mounts, corev1.VolumeMount{
			Name:      addonVolumeName(i),
			MountPath: fmt.Sprintf("%s/addon-%d", AddonsPath, i),
		})
	}

	probe := &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{
				Path: healthPath,
				Port: intstr.FromInt32(OdooHTTPPort),
			},
		},
		InitialDelaySeconds: 30,
		PeriodSeconds:       10,
	}

	container := corev1.Container{
		Name:  "odoo",
		Image: s.Image(spec),
		Ports: []corev1.ContainerPort{
			{Name: "http", ContainerPort: OdooHTTPPort},
			{Name: "longpolling", ContainerPort: OdooLongpollingPort},
		},
		Env:            BuildEnv(owner.Name, spec.AdminSecret, spec.Env),
		VolumeMounts:   mounts,
		ReadinessProbe: probe,
		LivenessProbe:  probe.DeepCopy(),
	}
	if spec.Resources != nil {
		container.Resources = *spec.Resources
	}

	return &appsv1.Deployment{
		ObjectMeta: s.objectMeta(owner, WorkloadName(owner.Name), "app"),
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: SelectorLabels(owner.Name)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: Labels(owner.Name, "app"),
				},
				Spec: corev1.PodSpec{
					InitContainers: initContainers,
					Containers:     []corev1.Container{container},
					Volumes:        volumes,
				},
			},
		},
	}
}
