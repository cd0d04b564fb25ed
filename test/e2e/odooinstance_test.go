//go:build e2e

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

package e2e

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

var _ = Describe("odooinstance", Ordered, func() {
	const (
		instanceName  = "e2e-shop"
		testNamespace = "default"
		hostname      = "e2e-shop.example.com"
	)

	var (
		ctx            = context.Background()
		workloadName   = "odoo-" + instanceName
		credSecretName = "odoo-db-credentials-" + instanceName
	)

	AfterAll(func() {
		_ = dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Delete(
			ctx, instanceName, metav1.DeleteOptions{})
	})

	It("should create an instance and converge it to Running", func() {
		By("creating an OdooInstance CR")
		instance := &unstructured.Unstructured{
			Object: map[string]interface{}{
				"apiVersion": "apps.odoo-operator.io/v1alpha1",
				"kind":       "OdooInstance",
				"metadata": map[string]interface{}{
					"name":      instanceName,
					"namespace": testNamespace,
				},
				"spec": map[string]interface{}{
					"version":  "17.0",
					"replicas": int64(1),
					"ingress": map[string]interface{}{
						"enabled":  true,
						"hostname": hostname,
					},
				},
			},
		}
		_, err := dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Create(
			ctx, instance, metav1.CreateOptions{})
		Expect(err).NotTo(HaveOccurred(), "Failed to create OdooInstance")

		By("waiting for the instance to reach the Running phase")
		Eventually(func() string {
			obj, err := dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Get(
				ctx, instanceName, metav1.GetOptions{})
			if err != nil {
				return ""
			}
			phase, _, _ := unstructured.NestedString(obj.Object, "status", "phase")
			return phase
		}, defaultTimeout, pollingInterval).Should(Equal("Running"))

		By("waiting for the Ready condition")
		Eventually(func() bool {
			obj, err := dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Get(
				ctx, instanceName, metav1.GetOptions{})
			if err != nil {
				return false
			}
			conditions, _, _ := unstructured.NestedSlice(obj.Object, "status", "conditions")
			for _, c := range conditions {
				condition := c.(map[string]interface{})
				if condition["type"] == "Ready" && condition["status"] == "True" {
					return true
				}
			}
			return false
		}, defaultTimeout, pollingInterval).Should(BeTrue(), "Ready condition should be True")
	})

	It("should mirror database credentials into the namespace", func() {
		secret, err := k8sClient.CoreV1().Secrets(testNamespace).Get(ctx, credSecretName, metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred(), "Credential secret should exist")

		for _, key := range []string{"host", "port", "username", "password", "database"} {
			Expect(secret.Data).To(HaveKey(key))
			Expect(secret.Data[key]).NotTo(BeEmpty())
		}
		Expect(string(secret.Data["database"])).To(Equal("odoo_default_e2e-shop"))
	})

	It("should create the workload and route", func() {
		deployment, err := k8sClient.AppsV1().Deployments(testNamespace).Get(ctx, workloadName, metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred(), "Deployment should exist")
		Expect(*deployment.Spec.Replicas).To(Equal(int32(1)))

		_, err = k8sClient.NetworkingV1().Ingresses(testNamespace).Get(ctx, workloadName, metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred(), "Ingress should exist")

		obj, err := dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Get(
			ctx, instanceName, metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred())
		url, _, _ := unstructured.NestedString(obj.Object, "status", "url")
		Expect(url).To(Equal("https://" + hostname))
	})

	It("should roll out a replica change without rotating credentials", func() {
		before, err := k8sClient.CoreV1().Secrets(testNamespace).Get(ctx, credSecretName, metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred())
		passwordBefore := string(before.Data["password"])

		By("scaling the instance to 2 replicas")
		obj, err := dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Get(
			ctx, instanceName, metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(unstructured.SetNestedField(obj.Object, int64(2), "spec", "replicas")).To(Succeed())
		_, err = dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Update(
			ctx, obj, metav1.UpdateOptions{})
		Expect(err).NotTo(HaveOccurred())

		By("waiting for the deployment to pick up the new replica count")
		Eventually(func() int32 {
			deployment, err := k8sClient.AppsV1().Deployments(testNamespace).Get(ctx, workloadName, metav1.GetOptions{})
			if err != nil || deployment.Spec.Replicas == nil {
				return 0
			}
			return *deployment.Spec.Replicas
		}, defaultTimeout, pollingInterval).Should(Equal(int32(2)))

		after, err := k8sClient.CoreV1().Secrets(testNamespace).Get(ctx, credSecretName, metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(after.Data["password"])).To(Equal(passwordBefore), "Password must not rotate on spec updates")
	})

	It("should remove the route when ingress is disabled", func() {
		obj, err := dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Get(
			ctx, instanceName, metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(unstructured.SetNestedField(obj.Object, false, "spec", "ingress", "enabled")).To(Succeed())
		_, err = dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Update(
			ctx, obj, metav1.UpdateOptions{})
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() bool {
			_, err := k8sClient.NetworkingV1().Ingresses(testNamespace).Get(ctx, workloadName, metav1.GetOptions{})
			return apierrors.IsNotFound(err)
		}, defaultTimeout, pollingInterval).Should(BeTrue(), "Ingress should be deleted")
	})

	It("should tear down the instance and its dependents", func() {
		By("deleting the OdooInstance CR")
		err := dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Delete(
			ctx, instanceName, metav1.DeleteOptions{})
		Expect(err).NotTo(HaveOccurred())

		By("waiting for the CR to disappear")
		Eventually(func() bool {
			_, err := dynamicClient.Resource(odooInstanceGVR).Namespace(testNamespace).Get(
				ctx, instanceName, metav1.GetOptions{})
			return apierrors.IsNotFound(err)
		}, defaultTimeout, pollingInterval).Should(BeTrue(), "OdooInstance should be deleted")

		By("waiting for owned objects to be garbage collected")
		Eventually(func() bool {
			_, err := k8sClient.AppsV1().Deployments(testNamespace).Get(ctx, workloadName, metav1.GetOptions{})
			return apierrors.IsNotFound(err)
		}, defaultTimeout, pollingInterval).Should(BeTrue(), "Deployment should be garbage collected")
	})
})
