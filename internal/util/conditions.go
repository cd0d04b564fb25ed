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

package util

import (
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Condition types for instance resources
const (
	// ConditionTypeReady indicates whether the instance is fully deployed
	ConditionTypeReady = "Ready"

	// ConditionTypeIngressSkipped indicates ingress was requested but could
	// not be synthesized (no hostname)
	ConditionTypeIngressSkipped = "IngressSkipped"

	// ConditionTypeProgressing indicates whether the instance is being processed
	ConditionTypeProgressing = "Progressing"

	// ConditionTypeDegraded indicates whether the instance is in a degraded state
	ConditionTypeDegraded = "Degraded"
)

// Condition reasons
const (
	ReasonReconciling       = "Reconciling"
	ReasonReconcileSuccess  = "ReconcileSuccess"
	ReasonReconcileFailed   = "ReconcileFailed"
	ReasonProvisioning      = "Provisioning"
	ReasonProvisioned       = "Provisioned"
	ReasonProvisionFailed   = "ProvisionFailed"
	ReasonApplyFailed       = "ApplyFailed"
	ReasonConnectionFailed  = "ConnectionFailed"
	ReasonDeleting          = "Deleting"
	ReasonDeleted           = "Deleted"
	ReasonHostnameMissing   = "HostnameMissing"
	ReasonIngressConfigured = "IngressConfigured"
	ReasonSecretNotFound    = "SecretNotFound"
)

// SetCondition adds or updates a condition in the conditions list
func SetCondition(conditions *[]metav1.Condition, conditionType string, status metav1.ConditionStatus, reason, message string) {
	now := metav1.NewTime(time.Now())

	// Find existing condition
	for i, c := range *conditions {
		if c.Type == conditionType {
			// Only update if status, reason, or message changed
			if c.Status != status || c.Reason != reason || c.Message != message {
				(*conditions)[i] = metav1.Condition{
					Type:               conditionType,
					Status:             status,
					Reason:             reason,
					Message:            message,
					LastTransitionTime: now,
					ObservedGeneration: c.ObservedGeneration,
				}
			}
			return
		}
	}

	// Add new condition
	*conditions = append(*conditions, metav1.Condition{
		Type:               conditionType,
		Status:             status,
		Reason:             reason,
		Message:            message,
		LastTransitionTime: now,
	})
}

// GetCondition returns a condition by type
func GetCondition(conditions []metav1.Condition, conditionType string) *metav1.Condition {
	for i := range conditions {
		if conditions[i].Type == conditionType {
			return &conditions[i]
		}
	}
	return nil
}

// IsConditionTrue checks if a condition is true
func IsConditionTrue(conditions []metav1.Condition, conditionType string) bool {
	cond := GetCondition(conditions, conditionType)
	return cond != nil && cond.Status == metav1.ConditionTrue
}

// IsConditionFalse checks if a condition is false
func IsConditionFalse(conditions []metav1.Condition, conditionType string) bool {
	cond := GetCondition(conditions, conditionType)
	return cond != nil && cond.Status == metav1.ConditionFalse
}

// RemoveCondition removes a condition by type
func RemoveCondition(conditions *[]metav1.Condition, conditionType string) {
	var newConditions []metav1.Condition
	for _, c := range *conditions {
		if c.Type != conditionType {
			newConditions = append(newConditions, c)
		}
	}
	*conditions = newConditions
}

// SetReadyCondition is a helper to set the Ready condition
func SetReadyCondition(conditions *[]metav1.Condition, status metav1.ConditionStatus, reason, message string) {
	SetCondition(conditions, ConditionTypeReady, status, reason, message)
}

// SetIngressSkippedCondition is a helper to set the IngressSkipped condition
func SetIngressSkippedCondition(conditions *[]metav1.Condition, status metav1.ConditionStatus, reason, message string) {
	SetCondition(conditions, ConditionTypeIngressSkipped, status, reason, message)
}
