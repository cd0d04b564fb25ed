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
	"crypto/rand"
	"encoding/hex"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// passKey keys the current pass token in a context.
type passKey struct{}

// passTokenBytes sized so collisions across a day of 30s requeues on a
// large fleet stay negligible.
const passTokenBytes = 6

// NewPassToken returns a random lowercase hex token identifying one
// reconciliation pass in aggregated logs.
func NewPassToken() string {
	raw := make([]byte, passTokenBytes)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}

// PassToken returns the token of the current pass, or "" outside one.
func PassToken(ctx context.Context) string {
	token, _ := ctx.Value(passKey{}).(string)
	return token
}

// tokenized decorates a reconciler so every pass runs with a fresh token
// stamped on its context logger. Concurrent passes over different instances
// interleave in the operator log; the "pass" field pulls them apart again.
type tokenized struct {
	next reconcile.Reconciler
}

func (t *tokenized) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	token := NewPassToken()
	ctx = context.WithValue(ctx, passKey{}, token)
	ctx = logr.NewContext(ctx, logf.FromContext(ctx).WithValues("pass", token))
	return t.next.Reconcile(ctx, req)
}
