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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	// Metric namespace
	namespace = "odoo"

	// Label names
	labelInstance  = "instance"
	labelNamespace = "namespace"
	labelStatus    = "status"
	labelOperation = "operation"
	labelKind      = "kind"
	labelOutcome   = "outcome"
	labelPhase     = "phase"
)

// Status values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Operation values
const (
	OperationProvision   = "provision"
	OperationDeprovision = "deprovision"
	OperationConnect     = "connect"
)

var (
	// Reconcile metrics

	// ReconcileTotal tracks completed reconciliations per instance.
	ReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_total",
			Help:      "Total number of reconciliations",
		},
		[]string{labelInstance, labelNamespace, labelStatus},
	)

	// ReconcileDurationSeconds tracks how long reconciliations take.
	ReconcileDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliations in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{labelInstance, labelNamespace},
	)

	// Database lifecycle metrics

	// DatabaseOperationsTotal tracks provision/deprovision calls against
	// the shared PostgreSQL server.
	DatabaseOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database lifecycle operations",
		},
		[]string{labelOperation, labelStatus, labelNamespace},
	)

	// Apply metrics

	// ApplyOperationsTotal tracks object-store writes per resource kind and
	// apply outcome (created, updated, deleted, ...).
	ApplyOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apply_operations_total",
			Help:      "Total number of managed resource apply operations",
		},
		[]string{labelKind, labelOutcome, labelNamespace},
	)

	// Instance state metrics

	// InstancePhase reports each instance's current lifecycle phase as a
	// one-hot gauge across phase label values.
	InstancePhase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "instance_phase",
			Help:      "Current phase of the instance (1 for the active phase, 0 otherwise)",
		},
		[]string{labelInstance, labelNamespace, labelPhase},
	)

	// InstanceReady indicates whether the instance's workload reports ready.
	InstanceReady = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "instance_ready",
			Help:      "Whether the instance is ready (1) or not (0)",
		},
		[]string{labelInstance, labelNamespace},
	)
)

func init() {
	// Register all metrics with the controller-runtime metrics registry
	metrics.Registry.MustRegister(
		ReconcileTotal,
		ReconcileDurationSeconds,
		DatabaseOperationsTotal,
		ApplyOperationsTotal,
		InstancePhase,
		InstanceReady,
	)
}

// knownPhases is the closed set of phase label values, so a phase change
// zeroes the previous phase instead of leaving a stale 1 behind.
var knownPhases = []string{"Pending", "Updating", "Running", "Failed"}

// RecordReconcile records a completed reconciliation with its status.
func RecordReconcile(instance, namespace, status string) {
	ReconcileTotal.WithLabelValues(instance, namespace, status).Inc()
}

// RecordReconcileDuration records how long a reconciliation took.
func RecordReconcileDuration(instance, namespace string, seconds float64) {
	ReconcileDurationSeconds.WithLabelValues(instance, namespace).Observe(seconds)
}

// RecordDatabaseOperation records a database lifecycle operation.
func RecordDatabaseOperation(operation, namespace, status string) {
	DatabaseOperationsTotal.WithLabelValues(operation, status, namespace).Inc()
}

// RecordApply records an object-store apply outcome for a resource kind.
func RecordApply(kind, outcome, namespace string) {
	ApplyOperationsTotal.WithLabelValues(kind, outcome, namespace).Inc()
}

// SetInstancePhase sets the one-hot phase gauge for an instance.
func SetInstancePhase(instance, namespace, phase string) {
	for _, p := range knownPhases {
		value := float64(0)
		if p == phase {
			value = 1
		}
		InstancePhase.WithLabelValues(instance, namespace, p).Set(value)
	}
}

// SetInstanceReady sets the readiness gauge for an instance.
func SetInstanceReady(instance, namespace string, ready bool) {
	value := float64(0)
	if ready {
		value = 1
	}
	InstanceReady.WithLabelValues(instance, namespace).Set(value)
}

// DeleteInstanceMetrics removes all per-instance series for a deleted
// instance so the scrape surface doesn't grow without bound.
func DeleteInstanceMetrics(instance, namespace string) {
	InstanceReady.DeleteLabelValues(instance, namespace)
	ReconcileDurationSeconds.DeleteLabelValues(instance, namespace)
	for _, p := range knownPhases {
		InstancePhase.DeleteLabelValues(instance, namespace, p)
	}
}
