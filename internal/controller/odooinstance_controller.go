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

package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	jsonpatch "gomodules.xyz/jsonpatch/v2"
	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	appsv1alpha1 "github.com/odoo-operator/api/v1alpha1"
	"github.com/odoo-operator/internal/eventbus"
	"github.com/odoo-operator/internal/logging"
	"github.com/odoo-operator/internal/metrics"
	"github.com/odoo-operator/internal/reconcileutil"
	"github.com/odoo-operator/internal/synthesis"
	"github.com/odoo-operator/internal/util"
)

// OdooInstanceReconciler reconciles an OdooInstance against its dependent
// objects and the external database server.
type OdooInstanceReconciler struct {
	client.Client
	Handler *Handler
}

// +kubebuilder:rbac:groups=apps.odoo-operator.io,resources=odooinstances,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=apps.odoo-operator.io,resources=odooinstances/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=apps.odoo-operator.io,resources=odooinstances/finalizers,verbs=update
// +kubebuilder:rbac:groups=apps,resources=deployments,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=services;configmaps;secrets;persistentvolumeclaims,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=networking.k8s.io,resources=ingresses,verbs=get;list;watch;create;update;patch;delete

// Reconcile drives one instance toward its desired state. The pass is
// phased: admission of the finalizer, database and dependent-object
// convergence, then status. Status is always merge-patched so concurrent
// writers never clobber each other.
func (r *OdooInstanceReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := logf.FromContext(ctx)
	start := time.Now()

	instance := &appsv1alpha1.OdooInstance{}
	if err := r.Get(ctx, req.NamespacedName, instance); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if util.ShouldSkipReconcile(instance) {
		log.Info("Reconciliation skipped by annotation")
		return ctrl.Result{}, nil
	}

	if util.IsMarkedForDeletion(instance) {
		return r.reconcileDelete(ctx, instance)
	}

	if util.AddFinalizer(instance, util.FinalizerInstance) {
		if err := r.Update(ctx, instance); err != nil {
			return ctrl.Result{}, err
		}
		return ctrl.Result{}, nil
	}

	lastApplied, seenBefore := instance.Annotations[util.AnnotationLastAppliedSpec]
	currentSpec, err := json.Marshal(instance.Spec)
	if err != nil {
		return ctrl.Result{}, fmt.Errorf("marshaling spec: %w", err)
	}

	result, reconcileErr := r.converge(ctx, instance, seenBefore, lastApplied, currentSpec)
	metrics.RecordReconcileDuration(instance.Name, instance.Namespace, time.Since(start).Seconds())

	if reconcileErr != nil {
		metrics.RecordReconcile(instance.Name, instance.Namespace, metrics.StatusFailure)
		r.markFailed(ctx, instance, reconcileErr, seenBefore)
		res, err := reconcileutil.ClassifyRequeue(reconcileErr)
		if err == nil {
			// Permanent errors are surfaced in status only; requeueing
			// cannot repair an invalid spec.
			log.Info("Reconciliation halted on permanent error", "error", reconcileErr.Error())
		}
		return res, err
	}

	metrics.RecordReconcile(instance.Name, instance.Namespace, metrics.StatusSuccess)

	if err := r.recordAppliedSpec(ctx, instance, currentSpec); err != nil {
		return ctrl.Result{}, err
	}

	ready, err := r.workloadReady(ctx, instance)
	if err != nil {
		return ctrl.Result{}, err
	}
	if err := r.markConverged(ctx, instance, result, ready); err != nil {
		return ctrl.Result{}, err
	}

	if !ready {
		return ctrl.Result{RequeueAfter: reconcileutil.RequeueDefault}, nil
	}
	return ctrl.Result{}, nil
}

// converge runs the create or update pass, stamping the transitional phase
// before side effects begin so observers see progress on long passes.
func (r *OdooInstanceReconciler) converge(ctx context.Context, instance *appsv1alpha1.OdooInstance, seenBefore bool, lastApplied string, currentSpec []byte) (synthesis.Result, error) {
	log := logf.FromContext(ctx)

	if !seenBefore {
		if err := r.setPhase(ctx, instance, appsv1alpha1.PhasePending, "Provisioning instance"); err != nil {
			return synthesis.Result{}, err
		}
		log.Info("Creating instance", "version", instance.Spec.Version)
		return r.Handler.OnCreate(ctx, instance)
	}

	if lastApplied != string(currentSpec) {
		if err := r.setPhase(ctx, instance, appsv1alpha1.PhaseUpdating, "Applying spec change"); err != nil {
			return synthesis.Result{}, err
		}
		logSpecDiff(log, []byte(lastApplied), currentSpec)
	}
	return r.Handler.OnUpdate(ctx, instance)
}

// reconcileDelete tears down external state and releases the finalizer.
// Deprovisioning is best effort: the finalizer comes off even when the
// database server is unreachable, otherwise deletion would wedge forever.
func (r *OdooInstanceReconciler) reconcileDelete(ctx context.Context, instance *appsv1alpha1.OdooInstance) (ctrl.Result, error) {
	log := logf.FromContext(ctx)

	if !util.HasFinalizer(instance, util.FinalizerInstance) {
		return ctrl.Result{}, nil
	}

	log.Info("Deleting instance")
	if err := r.Handler.OnDelete(ctx, instance); err != nil {
		log.Error(err, "Deprovision failed, releasing finalizer anyway")
	}

	metrics.DeleteInstanceMetrics(instance.Name, instance.Namespace)

	util.RemoveFinalizer(instance, util.FinalizerInstance)
	if err := r.Update(ctx, instance); err != nil {
		return ctrl.Result{}, err
	}
	r.Handler.publish(ctx, eventbus.NewInstanceDeleted(instance.Name, instance.Namespace))
	return ctrl.Result{}, nil
}

// recordAppliedSpec stamps the applied spec onto the instance so the next
// pass can distinguish create from update and diff spec changes.
func (r *OdooInstanceReconciler) recordAppliedSpec(ctx context.Context, instance *appsv1alpha1.OdooInstance, currentSpec []byte) error {
	if instance.Annotations[util.AnnotationLastAppliedSpec] == string(currentSpec) {
		return nil
	}
	base := instance.DeepCopy()
	if instance.Annotations == nil {
		instance.Annotations = map[string]string{}
	}
	instance.Annotations[util.AnnotationLastAppliedSpec] = string(currentSpec)
	return r.Patch(ctx, instance, client.MergeFrom(base))
}

// workloadReady reports whether the workload has the desired number of
// ready replicas. A missing deployment counts as not ready.
func (r *OdooInstanceReconciler) workloadReady(ctx context.Context, instance *appsv1alpha1.OdooInstance) (bool, error) {
	deploy := &appsv1.Deployment{}
	key := types.NamespacedName{
		Name:      synthesis.WorkloadName(instance.Name),
		Namespace: instance.Namespace,
	}
	if err := r.Get(ctx, key, deploy); err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	desired := int32(1)
	if instance.Spec.Replicas != nil {
		desired = *instance.Spec.Replicas
	}
	return deploy.Status.ReadyReplicas >= desired, nil
}

// setPhase merge-patches a transitional phase onto status. Readiness is left
// alone: an instance that was serving traffic keeps reporting ready while a
// rollout is in flight.
func (r *OdooInstanceReconciler) setPhase(ctx context.Context, instance *appsv1alpha1.OdooInstance, phase appsv1alpha1.Phase, message string) error {
	base := instance.DeepCopy()
	instance.Status.Phase = phase
	instance.Status.Message = message
	metrics.SetInstancePhase(instance.Name, instance.Namespace, string(phase))
	return r.Status().Patch(ctx, instance, client.MergeFrom(base))
}

// markConverged records the terminal status of a successful pass: phase,
// readiness, resolved URL, and the ingress-skipped condition.
func (r *OdooInstanceReconciler) markConverged(ctx context.Context, instance *appsv1alpha1.OdooInstance, result synthesis.Result, ready bool) error {
	base := instance.DeepCopy()

	instance.Status.Phase = appsv1alpha1.PhaseRunning
	instance.Status.Ready = ready
	instance.Status.URL = resolveURL(&instance.Spec)
	if ready {
		instance.Status.Message = "Instance is running"
		util.SetReadyCondition(&instance.Status.Conditions, metav1.ConditionTrue, util.ReasonReconcileSuccess, "All resources converged")
	} else {
		instance.Status.Message = "Waiting for workload to become ready"
		util.SetReadyCondition(&instance.Status.Conditions, metav1.ConditionFalse, util.ReasonReconciling, "Workload not yet ready")
	}

	if result.IngressSkipped {
		util.SetIngressSkippedCondition(&instance.Status.Conditions, metav1.ConditionTrue, util.ReasonHostnameMissing, "Ingress enabled but no hostname provided")
	} else {
		util.RemoveCondition(&instance.Status.Conditions, util.ConditionTypeIngressSkipped)
	}

	metrics.SetInstancePhase(instance.Name, instance.Namespace, string(appsv1alpha1.PhaseRunning))
	metrics.SetInstanceReady(instance.Name, instance.Namespace, ready)
	return r.Status().Patch(ctx, instance, client.MergeFrom(base))
}

// markFailed records a failed pass on status. A failed update patches phase
// and message only, leaving readiness exactly as it was before the call: the
// workload that was serving may well still be serving. A failed first pass
// additionally marks the instance not ready, since nothing was ever built.
// Errors here are logged and swallowed; the pass already has an error to
// report.
func (r *OdooInstanceReconciler) markFailed(ctx context.Context, instance *appsv1alpha1.OdooInstance, reconcileErr error, seenBefore bool) {
	log := logf.FromContext(ctx)
	base := instance.DeepCopy()

	instance.Status.Phase = appsv1alpha1.PhaseFailed
	instance.Status.Message = reconcileErr.Error()
	if !seenBefore {
		instance.Status.Ready = false
		util.SetReadyCondition(&instance.Status.Conditions, metav1.ConditionFalse, util.ReasonReconcileFailed, reconcileErr.Error())
		metrics.SetInstanceReady(instance.Name, instance.Namespace, false)
	}

	metrics.SetInstancePhase(instance.Name, instance.Namespace, string(appsv1alpha1.PhaseFailed))
	if err := r.Status().Patch(ctx, instance, client.MergeFrom(base)); err != nil {
		log.Error(err, "Failed to record failure on status")
	}
}

// resolveURL derives the external URL from the ingress hostname and TLS
// flag. Empty when no route is desired.
func resolveURL(spec *appsv1alpha1.OdooInstanceSpec) string {
	if spec.Ingress == nil || !spec.Ingress.Enabled || spec.Ingress.Hostname == "" {
		return ""
	}
	scheme := "http"
	if synthesis.TLSEnabled(spec.Ingress) {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, spec.Ingress.Hostname)
}

// logSpecDiff logs the JSON patch between the previously applied spec and
// the current one, one line per changed path.
func logSpecDiff(log logr.Logger, previous, current []byte) {
	ops, err := jsonpatch.CreatePatch(previous, current)
	if err != nil {
		log.V(1).Info("Unable to diff spec change", "error", err.Error())
		return
	}
	for _, op := range ops {
		log.Info("Spec change", "op", op.Operation, "path", op.Path)
	}
}

// SetupWithManager registers the reconciler with the manager. Extra
// predicates (operator-instance partitioning) are supplied by the caller to
// keep this package free of configuration concerns.
func (r *OdooInstanceReconciler) SetupWithManager(mgr ctrl.Manager, predicates ...predicate.Predicate) error {
	return logging.BuildController(mgr).
		For(&appsv1alpha1.OdooInstance{}).
		Named("odooinstance").
		Owns(&appsv1.Deployment{}).
		WithPredicates(predicates...).
		Complete(r)
}
