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

package secret

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/odoo-operator/internal/synthesis"
)

// PasswordLength is the length of generated database passwords.
const PasswordLength = 16

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Manager handles credential secret operations
type Manager struct {
	client client.Client
}

// NewManager creates a new secret manager
func NewManager(c client.Client) *Manager {
	return &Manager{client: c}
}

// Credentials holds the connection parameters mirrored into the credential
// secret. Each field is stored under its own key so a partial read never
// silently yields malformed data.
type Credentials struct {
	Host     string
	Port     int32
	Username string
	Password string
	Database string
}

// Data encodes the credentials as secret data.
func (c Credentials) Data() map[string][]byte {
	return map[string][]byte{
		synthesis.SecretKeyHost:     []byte(c.Host),
		synthesis.SecretKeyPort:     []byte(strconv.Itoa(int(c.Port))),
		synthesis.SecretKeyUsername: []byte(c.Username),
		synthesis.SecretKeyPassword: []byte(c.Password),
		synthesis.SecretKeyDatabase: []byte(c.Database),
	}
}

// GeneratePassword generates a fixed-length random password drawn from
// letters and digits.
func GeneratePassword() (string, error) {
	password := make([]byte, PasswordLength)
	charsetLen := big.NewInt(int64(len(passwordCharset)))

	for i := 0; i < PasswordLength; i++ {
		idx, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		password[i] = passwordCharset[idx.Int64()]
	}
	return string(password), nil
}

// ExistingPassword returns the password already mirrored for the instance,
// if any. Repeat reconciliations prefer this over generating a fresh one so
// credentials are not rotated by unrelated spec updates.
func (m *Manager) ExistingPassword(ctx context.Context, namespace, instance string) (string, bool, error) {
	secret := &corev1.Secret{}
	err := m.client.Get(ctx, types.NamespacedName{
		Namespace: namespace,
		Name:      synthesis.CredentialSecretName(instance),
	}, secret)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}

	password, ok := secret.Data[synthesis.SecretKeyPassword]
	if !ok || len(password) == 0 {
		return "", false, nil
	}
	return string(password), true, nil
}

// EnsureCredentialSecret creates or updates the mirrored credential secret
// for the instance, owned by it for cascading deletion.
func (m *Manager) EnsureCredentialSecret(ctx context.Context, owner synthesis.Owner, creds Credentials) error {
	name := synthesis.CredentialSecretName(owner.Name)

	secret := &corev1.Secret{}
	err := m.client.Get(ctx, types.NamespacedName{
		Namespace: owner.Namespace,
		Name:      name,
	}, secret)
	if err != nil {
		if errors.IsNotFound(err) {
			return m.createCredentialSecret(ctx, owner, name, creds)
		}
		return err
	}

	secret.Data = creds.Data()
	return m.client.Update(ctx, secret)
}

func (m *Manager) createCredentialSecret(ctx context.Context, owner synthesis.Owner, name string, creds Credentials) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:            name,
			Namespace:       owner.Namespace,
			Labels:          synthesis.Labels(owner.Name, "database"),
			OwnerReferences: []metav1.OwnerReference{owner.Reference()},
		},
		Type: corev1.SecretTypeOpaque,
		Data: creds.Data(),
	}
	return m.client.Create(ctx, secret)
}

// GetKeyValue retrieves a single key from a secret. Used at startup to
// resolve the database administrator password from its referenced secret.
func (m *Manager) GetKeyValue(ctx context.Context, namespace, name, key string) (string, error) {
	secret := &corev1.Secret{}
	err := m.client.Get(ctx, types.NamespacedName{
		Namespace: namespace,
		Name:      name,
	}, secret)
	if err != nil {
		return "", err
	}

	data, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("secret %s does not contain key %s", name, key)
	}
	return string(data), nil
}

// SecretExists checks if a secret exists
func (m *Manager) SecretExists(ctx context.Context, namespace, name string) (bool, error) {
	secret := &corev1.Secret{}
	err := m.client.Get(ctx, types.NamespacedName{
		Namespace: namespace,
		Name:      name,
	}, secret)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
