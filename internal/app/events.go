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
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
	"github.com/odoo-operator/internal/eventbus"
)

// newLifecycleBus builds the in-process lifecycle bus and subscribes the
// Kubernetes event recorder so lifecycle events surface as events on the
// OdooInstance itself.
func newLifecycleBus(mgr ctrl.Manager) (*eventbus.InMemoryBus, error) {
	log := mgr.GetLogger().WithName("eventbus")

	busMetrics := eventbus.NewMetrics("odoo_operator")
	if err := busMetrics.Register(ctrlmetrics.Registry); err != nil {
		return nil, err
	}

	bus := eventbus.NewInMemoryBus(
		eventbus.WithLogger(log),
		eventbus.WithMiddleware(
			eventbus.RecoveryMiddleware(log),
			eventbus.LoggingMiddleware(log),
			eventbus.MetricsMiddleware(busMetrics),
		),
	)

	subscribeEventRecorder(bus, mgr.GetEventRecorderFor("odoo-operator"))
	return bus, nil
}

// subscribeEventRecorder mirrors every lifecycle event onto the owning
// OdooInstance as a Kubernetes event.
func subscribeEventRecorder(bus eventbus.Bus, recorder record.EventRecorder) {
	handler := func(ctx context.Context, event eventbus.Event) error {
		recorder.Event(instanceRef(event), corev1.EventTypeNormal, event.EventName(), eventMessage(event))
		return nil
	}

	for _, name := range []string{
		eventbus.EventDatabaseProvisioned,
		eventbus.EventDatabaseDeprovisioned,
		eventbus.EventCredentialsMirrored,
		eventbus.EventInstanceConverged,
		eventbus.EventInstanceDeleted,
	} {
		bus.Subscribe(name, "kubernetesEventRecorder", handler)
	}
}

// instanceRef builds a reference object for the recorder. Name and namespace
// are enough for the recorder to resolve the event target.
func instanceRef(event eventbus.Event) *appsv1alpha1.OdooInstance {
	return &appsv1alpha1.OdooInstance{
		ObjectMeta: metav1.ObjectMeta{
			Name:      event.Instance(),
			Namespace: event.Namespace(),
		},
	}
}

// eventMessage renders a human-readable message per event type.
func eventMessage(event eventbus.Event) string {
	switch e := event.(type) {
	case *eventbus.DatabaseProvisioned:
		return fmt.Sprintf("Provisioned database %s with role %s", e.Database, e.Role)
	case *eventbus.DatabaseDeprovisioned:
		return fmt.Sprintf("Dropped database %s and role %s", e.Database, e.Role)
	case *eventbus.CredentialsMirrored:
		return fmt.Sprintf("Mirrored credentials into secret %s", e.SecretName)
	case *eventbus.InstanceConverged:
		return fmt.Sprintf("Applied %d dependent objects", e.ObjectCount)
	case *eventbus.InstanceDeleted:
		return "Instance torn down"
	}
	return event.EventName()
}
