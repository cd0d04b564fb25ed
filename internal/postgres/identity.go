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

package postgres

// MaxIdentifierLength is the PostgreSQL identifier length limit.
const MaxIdentifierLength = 63

// Identity is the deterministic database-side identity of an instance.
// Both names include the namespace so distinct namespaces cannot collide;
// truncation may still merge two very long names (accepted, see DESIGN.md).
type Identity struct {
	Database string
	Role     string
}

func truncate(s string) string {
	if len(s) > MaxIdentifierLength {
		return s[:MaxIdentifierLength]
	}
	return s
}

// DeriveDatabaseName returns the database name for an instance.
func DeriveDatabaseName(name, namespace string) string {
	return truncate("odoo_" + namespace + "_" + name)
}

// DeriveRoleName returns the role name for an instance.
func DeriveRoleName(name, namespace string) string {
	return truncate("odoo_user_" + namespace + "_" + name)
}

// DeriveIdentity derives the full database identity of an instance.
func DeriveIdentity(name, namespace string) Identity {
	return Identity{
		Database: DeriveDatabaseName(name, namespace),
		Role:     DeriveRoleName(name, namespace),
	}
}
