//go:build !integration && !e2e && !envtest

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

package logging

import (
	"context"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	ctrl "sigs.k8s.io/controller-runtime"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

var _ = Describe("NewPassToken", func() {
	It("returns lowercase hex of a fixed width", func() {
		Expect(NewPassToken()).To(MatchRegexp(`^[0-9a-f]{12}$`))
	})

	It("does not repeat across calls", func() {
		seen := map[string]struct{}{}
		for i := 0; i < 200; i++ {
			seen[NewPassToken()] = struct{}{}
		}
		Expect(seen).To(HaveLen(200))
	})
})

var _ = Describe("PassToken", func() {
	It("is empty outside a pass", func() {
		Expect(PassToken(context.Background())).To(BeEmpty())
	})

	It("reads back the token stamped on the context", func() {
		ctx := context.WithValue(context.Background(), passKey{}, "cafe00112233")
		Expect(PassToken(ctx)).To(Equal("cafe00112233"))
	})
})

var _ = Describe("tokenized reconciler", func() {
	var baseCtx context.Context

	BeforeEach(func() {
		log := zap.New(zap.UseDevMode(true))
		logf.SetLogger(log)
		baseCtx = logr.NewContext(context.Background(), log)
	})

	It("stamps a token before delegating", func() {
		var seen string
		inner := reconcile.Func(func(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
			seen = PassToken(ctx)
			return ctrl.Result{}, nil
		})

		_, err := (&tokenized{next: inner}).Reconcile(baseCtx, ctrl.Request{})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(MatchRegexp(`^[0-9a-f]{12}$`))
	})

	It("uses a fresh token per pass", func() {
		tokens := map[string]struct{}{}
		inner := reconcile.Func(func(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
			tokens[PassToken(ctx)] = struct{}{}
			return ctrl.Result{}, nil
		})

		wrapped := &tokenized{next: inner}
		for i := 0; i < 10; i++ {
			_, _ = wrapped.Reconcile(baseCtx, ctrl.Request{})
		}
		Expect(tokens).To(HaveLen(10))
	})

	It("passes the inner result and error through unchanged", func() {
		wantResult := ctrl.Result{RequeueAfter: 42}
		inner := reconcile.Func(func(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
			return wantResult, context.DeadlineExceeded
		})

		result, err := (&tokenized{next: inner}).Reconcile(baseCtx, ctrl.Request{})
		Expect(result).To(Equal(wantResult))
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})
})
