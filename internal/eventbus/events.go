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

package eventbus

import (
	"time"
)

// Event names as constants for type safety and documentation.
const (
	EventDatabaseProvisioned   = "DatabaseProvisioned"
	EventDatabaseDeprovisioned = "DatabaseDeprovisioned"
	EventCredentialsMirrored   = "CredentialsMirrored"
	EventInstanceConverged     = "InstanceConverged"
	EventInstanceDeleted       = "InstanceDeleted"
)

// BaseEvent provides common event fields.
// Embed this struct in concrete event types.
type BaseEvent struct {
	name      string
	timestamp time.Time
	instance  string
	namespace string
}

// NewBaseEvent creates a new base event with current timestamp.
func NewBaseEvent(name, instance, namespace string) BaseEvent {
	return BaseEvent{
		name:      name,
		timestamp: time.Now(),
		instance:  instance,
		namespace: namespace,
	}
}

func (e BaseEvent) EventName() string    { return e.name }
func (e BaseEvent) EventTime() time.Time { return e.timestamp }
func (e BaseEvent) Instance() string     { return e.instance }
func (e BaseEvent) Namespace() string    { return e.namespace }

// DatabaseProvisioned is published after the role and database of an
// instance have been aligned on the server.
type DatabaseProvisioned struct {
	BaseEvent
	Database string
	Role     string
}

// NewDatabaseProvisioned creates a new DatabaseProvisioned event.
func NewDatabaseProvisioned(instance, namespace, database, role string) *DatabaseProvisioned {
	return &DatabaseProvisioned{
		BaseEvent: NewBaseEvent(EventDatabaseProvisioned, instance, namespace),
		Database:  database,
		Role:      role,
	}
}

// DatabaseDeprovisioned is published after the role and database of an
// instance have been dropped from the server.
type DatabaseDeprovisioned struct {
	BaseEvent
	Database string
	Role     string
}

// NewDatabaseDeprovisioned creates a new DatabaseDeprovisioned event.
func NewDatabaseDeprovisioned(instance, namespace, database, role string) *DatabaseDeprovisioned {
	return &DatabaseDeprovisioned{
		BaseEvent: NewBaseEvent(EventDatabaseDeprovisioned, instance, namespace),
		Database:  database,
		Role:      role,
	}
}

// CredentialsMirrored is published after the credential secret of an
// instance has been written to its namespace.
type CredentialsMirrored struct {
	BaseEvent
	SecretName string
}

// NewCredentialsMirrored creates a new CredentialsMirrored event.
func NewCredentialsMirrored(instance, namespace, secretName string) *CredentialsMirrored {
	return &CredentialsMirrored{
		BaseEvent:  NewBaseEvent(EventCredentialsMirrored, instance, namespace),
		SecretName: secretName,
	}
}

// InstanceConverged is published after all dependent objects of an instance
// have been applied.
type InstanceConverged struct {
	BaseEvent
	ObjectCount int
}

// NewInstanceConverged creates a new InstanceConverged event.
func NewInstanceConverged(instance, namespace string, objectCount int) *InstanceConverged {
	return &InstanceConverged{
		BaseEvent:   NewBaseEvent(EventInstanceConverged, instance, namespace),
		ObjectCount: objectCount,
	}
}

// InstanceDeleted is published after an instance has been torn down and its
// finalizer released.
type InstanceDeleted struct {
	BaseEvent
}

// NewInstanceDeleted creates a new InstanceDeleted event.
func NewInstanceDeleted(instance, namespace string) *InstanceDeleted {
	return &InstanceDeleted{
		BaseEvent: NewBaseEvent(EventInstanceDeleted, instance, namespace),
	}
}
