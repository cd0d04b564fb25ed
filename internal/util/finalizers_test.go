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
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

var _ = Describe("Finalizers", func() {
	var (
		obj *corev1.ConfigMap
	)

	BeforeEach(func() {
		obj = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      "test-object",
				Namespace: "default",
			},
		}
	})

	Describe("AddFinalizer", func() {
		Context("when finalizer does not exist", func() {
			It("should add the finalizer", func() {
				result := AddFinalizer(obj, FinalizerInstance)

				Expect(result).To(BeTrue())
				Expect(obj.GetFinalizers()).To(ContainElement(FinalizerInstance))
			})
		})

		Context("when finalizer already exists", func() {
			BeforeEach(func() {
				obj.SetFinalizers([]string{FinalizerInstance})
			})

			It("should return false", func() {
				result := AddFinalizer(obj, FinalizerInstance)

				Expect(result).To(BeFalse())
			})

			It("should not duplicate the finalizer", func() {
				AddFinalizer(obj, FinalizerInstance)

				Expect(obj.GetFinalizers()).To(HaveLen(1))
			})
		})
	})

	Describe("RemoveFinalizer", func() {
		Context("when finalizer exists", func() {
			BeforeEach(func() {
				obj.SetFinalizers([]string{FinalizerInstance, "other.io/finalizer"})
			})

			It("should remove the finalizer", func() {
				result := RemoveFinalizer(obj, FinalizerInstance)

				Expect(result).To(BeTrue())
				Expect(obj.GetFinalizers()).NotTo(ContainElement(FinalizerInstance))
			})

			It("should preserve other finalizers", func() {
				RemoveFinalizer(obj, FinalizerInstance)

				Expect(obj.GetFinalizers()).To(ContainElement("other.io/finalizer"))
			})
		})

		Context("when finalizer does not exist", func() {
			It("should return false", func() {
				result := RemoveFinalizer(obj, FinalizerInstance)

				Expect(result).To(BeFalse())
			})
		})
	})

	Describe("HasFinalizer", func() {
		Context("when finalizer exists", func() {
			BeforeEach(func() {
				obj.SetFinalizers([]string{FinalizerInstance})
			})

			It("should return true", func() {
				Expect(HasFinalizer(obj, FinalizerInstance)).To(BeTrue())
			})
		})

		Context("when finalizers is nil", func() {
			It("should return false", func() {
				Expect(HasFinalizer(obj, FinalizerInstance)).To(BeFalse())
			})
		})
	})

	Describe("IsMarkedForDeletion", func() {
		Context("when object is marked for deletion", func() {
			BeforeEach(func() {
				now := metav1.NewTime(time.Now())
				obj.SetDeletionTimestamp(&now)
			})

			It("should return true", func() {
				Expect(IsMarkedForDeletion(obj)).To(BeTrue())
			})
		})

		Context("when object is not marked for deletion", func() {
			It("should return false", func() {
				Expect(IsMarkedForDeletion(obj)).To(BeFalse())
			})
		})
	})

	Describe("ShouldSkipReconcile", func() {
		Context("when skip-reconcile annotation is set to true", func() {
			BeforeEach(func() {
				obj.SetAnnotations(map[string]string{
					AnnotationSkipReconcile: "true",
				})
			})

			It("should return true", func() {
				Expect(ShouldSkipReconcile(obj)).To(BeTrue())
			})
		})

		Context("when pause-reconcile annotation is set to true", func() {
			BeforeEach(func() {
				obj.SetAnnotations(map[string]string{
					AnnotationPauseReconcile: "true",
				})
			})

			It("should return true", func() {
				Expect(ShouldSkipReconcile(obj)).To(BeTrue())
			})
		})

		Context("when skip-reconcile annotation is set to false", func() {
			BeforeEach(func() {
				obj.SetAnnotations(map[string]string{
					AnnotationSkipReconcile: "false",
				})
			})

			It("should return false", func() {
				Expect(ShouldSkipReconcile(obj)).To(BeFalse())
			})
		})

		Context("when skip-reconcile has non-boolean value", func() {
			BeforeEach(func() {
				obj.SetAnnotations(map[string]string{
					AnnotationSkipReconcile: "yes",
				})
			})

			It("should return false", func() {
				Expect(ShouldSkipReconcile(obj)).To(BeFalse())
			})
		})

		Context("when annotations is nil", func() {
			It("should return false", func() {
				Expect(ShouldSkipReconcile(obj)).To(BeFalse())
			})
		})
	})

	Describe("Constants", func() {
		It("should have expected finalizer and annotation values", func() {
			Expect(FinalizerInstance).To(Equal("apps.odoo-operator.io/instance-protection"))
			Expect(AnnotationSkipReconcile).To(Equal("apps.odoo-operator.io/skip-reconcile"))
			Expect(AnnotationPauseReconcile).To(Equal("apps.odoo-operator.io/pause-reconcile"))
			Expect(AnnotationLastAppliedSpec).To(Equal("apps.odoo-operator.io/last-applied-spec"))
		})
	})

	Describe("Integration scenarios", func() {
		Context("typical deletion workflow", func() {
			It("should handle finalizer lifecycle correctly", func() {
				// Initially no finalizer
				Expect(HasFinalizer(obj, FinalizerInstance)).To(BeFalse())

				// Add finalizer during create/update
				result := AddFinalizer(obj, FinalizerInstance)
				Expect(result).To(BeTrue())
				Expect(HasFinalizer(obj, FinalizerInstance)).To(BeTrue())

				// Mark for deletion
				now := metav1.NewTime(time.Now())
				obj.SetDeletionTimestamp(&now)
				Expect(IsMarkedForDeletion(obj)).To(BeTrue())

				// Remove finalizer after cleanup
				result = RemoveFinalizer(obj, FinalizerInstance)
				Expect(result).To(BeTrue())
				Expect(HasFinalizer(obj, FinalizerInstance)).To(BeFalse())
			})
		})
	})
})
