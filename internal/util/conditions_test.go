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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

var _ = Describe("Conditions", func() {
	var conditions []metav1.Condition

	BeforeEach(func() {
		conditions = []metav1.Condition{}
	})

	Describe("SetCondition", func() {
		Context("when adding a new condition", func() {
			It("should add the condition to the list", func() {
				SetCondition(&conditions, ConditionTypeReady, metav1.ConditionTrue, ReasonReconcileSuccess, "Instance is ready")

				Expect(conditions).To(HaveLen(1))
				Expect(conditions[0].Type).To(Equal(ConditionTypeReady))
				Expect(conditions[0].Status).To(Equal(metav1.ConditionTrue))
				Expect(conditions[0].Reason).To(Equal(ReasonReconcileSuccess))
				Expect(conditions[0].Message).To(Equal("Instance is ready"))
				Expect(conditions[0].LastTransitionTime.IsZero()).To(BeFalse())
			})

			It("should add multiple different conditions", func() {
				SetCondition(&conditions, ConditionTypeReady, metav1.ConditionTrue, ReasonReconcileSuccess, "Ready")
				SetCondition(&conditions, ConditionTypeIngressSkipped, metav1.ConditionTrue, ReasonHostnameMissing, "No hostname")

				Expect(conditions).To(HaveLen(2))
			})
		})

		Context("when updating an existing condition", func() {
			BeforeEach(func() {
				SetCondition(&conditions, ConditionTypeReady, metav1.ConditionFalse, ReasonReconciling, "In progress")
			})

			It("should replace the condition in place", func() {
				SetCondition(&conditions, ConditionTypeReady, metav1.ConditionTrue, ReasonReconcileSuccess, "Done")

				Expect(conditions).To(HaveLen(1))
				Expect(conditions[0].Status).To(Equal(metav1.ConditionTrue))
				Expect(conditions[0].Reason).To(Equal(ReasonReconcileSuccess))
			})

			It("should bump LastTransitionTime when the status changes", func() {
				first := conditions[0].LastTransitionTime
				time.Sleep(5 * time.Millisecond)

				SetCondition(&conditions, ConditionTypeReady, metav1.ConditionTrue, ReasonReconcileSuccess, "Done")

				Expect(conditions[0].LastTransitionTime.Time).To(BeTemporally(">=", first.Time))
			})

			It("should not rewrite an identical condition", func() {
				first := conditions[0].LastTransitionTime

				SetCondition(&conditions, ConditionTypeReady, metav1.ConditionFalse, ReasonReconciling, "In progress")

				Expect(conditions[0].LastTransitionTime).To(Equal(first))
			})
		})
	})

	Describe("GetCondition", func() {
		BeforeEach(func() {
			SetCondition(&conditions, ConditionTypeReady, metav1.ConditionTrue, ReasonReconcileSuccess, "Ready")
		})

		It("should return the condition when present", func() {
			cond := GetCondition(conditions, ConditionTypeReady)

			Expect(cond).NotTo(BeNil())
			Expect(cond.Type).To(Equal(ConditionTypeReady))
		})

		It("should return nil when absent", func() {
			Expect(GetCondition(conditions, ConditionTypeDegraded)).To(BeNil())
		})
	})

	Describe("IsConditionTrue and IsConditionFalse", func() {
		BeforeEach(func() {
			SetCondition(&conditions, ConditionTypeReady, metav1.ConditionTrue, ReasonReconcileSuccess, "Ready")
			SetCondition(&conditions, ConditionTypeIngressSkipped, metav1.ConditionFalse, ReasonIngressConfigured, "Configured")
		})

		It("should report true conditions", func() {
			Expect(IsConditionTrue(conditions, ConditionTypeReady)).To(BeTrue())
			Expect(IsConditionTrue(conditions, ConditionTypeIngressSkipped)).To(BeFalse())
		})

		It("should report false conditions", func() {
			Expect(IsConditionFalse(conditions, ConditionTypeIngressSkipped)).To(BeTrue())
			Expect(IsConditionFalse(conditions, ConditionTypeReady)).To(BeFalse())
		})

		It("should report false for absent conditions", func() {
			Expect(IsConditionTrue(conditions, ConditionTypeDegraded)).To(BeFalse())
			Expect(IsConditionFalse(conditions, ConditionTypeDegraded)).To(BeFalse())
		})
	})

	Describe("RemoveCondition", func() {
		BeforeEach(func() {
			SetCondition(&conditions, ConditionTypeReady, metav1.ConditionTrue, ReasonReconcileSuccess, "Ready")
			SetCondition(&conditions, ConditionTypeIngressSkipped, metav1.ConditionTrue, ReasonHostnameMissing, "No hostname")
		})

		It("should remove the named condition and preserve the rest", func() {
			RemoveCondition(&conditions, ConditionTypeIngressSkipped)

			Expect(conditions).To(HaveLen(1))
			Expect(conditions[0].Type).To(Equal(ConditionTypeReady))
		})
	})

	Describe("helpers", func() {
		It("SetReadyCondition should set the Ready condition", func() {
			SetReadyCondition(&conditions, metav1.ConditionTrue, ReasonReconcileSuccess, "Ready")

			Expect(IsConditionTrue(conditions, ConditionTypeReady)).To(BeTrue())
		})

		It("SetIngressSkippedCondition should set the IngressSkipped condition", func() {
			SetIngressSkippedCondition(&conditions, metav1.ConditionTrue, ReasonHostnameMissing, "No hostname")

			Expect(IsConditionTrue(conditions, ConditionTypeIngressSkipped)).To(BeTrue())
		})
	})
})
