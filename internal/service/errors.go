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

package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrNotFound indicates a cluster object was not found on an update path
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a cluster object already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrConnectionFailed indicates a connection to the database server failed
	ErrConnectionFailed = errors.New("connection failed")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps errors from the cluster object store that are neither
// conflicts nor not-found. These are terminal for create/update and
// best-effort-ignored during delete-time cleanup.
type StoreError struct {
	Operation string
	Resource  string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s on %s: %v", e.Operation, e.Resource, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation, resource string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Resource:  resource,
		Err:       err,
	}
}

// DatabaseError wraps errors from database provisioning operations.
type DatabaseError struct {
	Operation string
	Resource  string
	Err       error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s on %s: %v", e.Operation, e.Resource, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(operation, resource string, err error) *DatabaseError {
	return &DatabaseError{
		Operation: operation,
		Resource:  resource,
		Err:       err,
	}
}

// ConnectionError wraps connection-related errors.
type ConnectionError struct {
	Host string
	Port int32
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s:%d failed: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(host string, port int32, err error) *ConnectionError {
	return &ConnectionError{
		Host: host,
		Port: port,
		Err:  err,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConnectionFailed checks if an error is a connection failed error.
func IsConnectionFailed(err error) bool {
	var connErr *ConnectionError
	return errors.Is(err, ErrConnectionFailed) || errors.As(err, &connErr)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsDatabaseError checks if an error is a database provisioning error.
func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}

// IsStoreError checks if an error is a cluster store error.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
