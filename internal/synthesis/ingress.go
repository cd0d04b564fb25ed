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
	networkingv1 "k8s.io/api/networking/v1"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
)

// TLSEnabled reports whether the route should terminate TLS. Absent means
// enabled; the admission gate defaults it explicitly.
func TLSEnabled(ingress *appsv1alpha1.IngressSpec) bool {
	if ingress == nil || ingress.TLS == nil {
		return true
	}
	return *ingress.TLS
}

// BuildRoute synthesizes the ingress route. Callers must have verified that
// ingress is enabled and a hostname is present.
func (s *Synthesizer) BuildRoute(owner Owner, spec *appsv1alpha1.OdooInstanceSpec) *networkingv1.Ingress {
	ingress := spec.Ingress

	meta := s.objectMeta(owner, WorkloadName(owner.Name), "ingress")
	if len(ingress.Annotations) > 0 {
		meta.Annotations = map[string]string{}
		for k, v := range ingress.Annotations {
			meta.Annotations[k] = v
		}
	}

	pathType := networkingv1.PathTypePrefix
	route := &networkingv1.Ingress{
		ObjectMeta: meta,
		Spec: networkingv1.IngressSpec{
			Rules: []networkingv1.IngressRule{
				{
					Host: ingress.Hostname,
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     "/",
									PathType: &pathType,
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: WorkloadName(owner.Name),
											Port: networkingv1.ServiceBackendPort{Number: 80},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	class := ingress.IngressClass
	if class == "" {
		class = s.Defaults.IngressClass
	}
	if class != "" {
		route.Spec.IngressClassName = &class
	}

	if TLSEnabled(ingress) {
		secret := ingress.TLSSecret
		if secret == "" {
			secret = DefaultTLSSecretName(owner.Name)
		}
		route.Spec.TLS = []networkingv1.IngressTLS{
			{
				Hosts:      []string{ingress.Hostname},
				SecretName: secret,
			},
		}
	}
	return route
}
