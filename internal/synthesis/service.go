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
	"k8s.io/apimachinery/pkg/util/intstr"
)

// BuildEndpoint synthesizes the cluster service fronting the workload:
// http 80 onto the Odoo web port plus the longpolling port.
func (s *Synthesizer) BuildEndpoint(owner Owner) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: s.objectMeta(owner, WorkloadName(owner.Name), "app"),
		Spec: corev1.ServiceSpec{
			Selector: SelectorLabels(owner.Name),
			Ports: []corev1.ServicePort{
				{
					Name:       "http",
					Port:       80,
					TargetPort: intstr.FromInt32(OdooHTTPPort),
				},
				{
					Name:       "longpolling",
					Port:       OdooLongpollingPort,
					TargetPort: intstr.FromInt32(OdooLongpollingPort),
				},
			},
		},
	}
}
