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

// Package postgres keeps one external role and one external database aligned
// with each instance. A fresh administrator connection is dialed per call and
// closed before returning; no pool is held across reconciliations.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/odoo-operator/internal/service"
	"github.com/odoo-operator/internal/util"
)

// Config holds the administrator connection parameters, resolved once at
// process start from the environment and the referenced secret.
type Config struct {
	Host          string
	Port          int32
	AdminUser     string
	AdminPassword string

	// Timeouts bounds connect and DDL durations. Zero values disable the
	// corresponding bound.
	Timeouts util.TimeoutConfig
}

// Conn is the subset of a pgx connection the manager uses.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close(ctx context.Context) error
}

// DialFunc opens an administrator connection to the maintenance database.
type DialFunc func(ctx context.Context) (Conn, error)

// Manager provisions and tears down instance database identities.
type Manager struct {
	config Config
	dial   DialFunc
}

// NewManager creates a Manager that dials the configured server per call.
func NewManager(config Config) *Manager {
	m := &Manager{config: config}
	m.dial = m.connect
	return m
}

// NewManagerWithDial creates a Manager with a custom dialer. Used by tests.
func NewManagerWithDial(config Config, dial DialFunc) *Manager {
	return &Manager{config: config, dial: dial}
}

func (m *Manager) connect(ctx context.Context) (Conn, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=postgres user=%s password=%s sslmode=disable",
		m.config.Host, m.config.Port, m.config.AdminUser, m.config.AdminPassword,
	)

	ctx, cancel := m.config.Timeouts.WithConnectTimeout(ctx)
	defer cancel()

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, service.NewConnectionError(m.config.Host, m.config.Port, err)
	}
	return conn, nil
}

// Provision aligns the role and database of the identity with the desired
// password. The role password is reset unconditionally on every call so the
// mirrored secret stays authoritative. The database is created owned by the
// role, or reassigned to it if it already exists.
func (m *Manager) Provision(ctx context.Context, id Identity, password string) error {
	ctx, cancel := m.config.Timeouts.WithOperationTimeout(ctx)
	defer cancel()

	conn, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(ctx) }()

	roleExists, err := m.roleExists(ctx, conn, id.Role)
	if err != nil {
		return service.NewDatabaseError("check role", id.Role, err)
	}
	if roleExists {
		query := fmt.Sprintf("ALTER ROLE %s WITH LOGIN PASSWORD %s",
			escapeIdentifier(id.Role), escapeLiteral(password))
		if _, err := conn.Exec(ctx, query); err != nil {
			return service.NewDatabaseError("alter role", id.Role, err)
		}
	} else {
		query := fmt.Sprintf("CREATE ROLE %s WITH LOGIN PASSWORD %s",
			escapeIdentifier(id.Role), escapeLiteral(password))
		if _, err := conn.Exec(ctx, query); err != nil {
			return service.NewDatabaseError("create role", id.Role, err)
		}
	}

	dbExists, err := m.databaseExists(ctx, conn, id.Database)
	if err != nil {
		return service.NewDatabaseError("check database", id.Database, err)
	}
	if dbExists {
		query := fmt.Sprintf("ALTER DATABASE %s OWNER TO %s",
			escapeIdentifier(id.Database), escapeIdentifier(id.Role))
		if _, err := conn.Exec(ctx, query); err != nil {
			return service.NewDatabaseError("alter database", id.Database, err)
		}
	} else {
		query := fmt.Sprintf("CREATE DATABASE %s OWNER %s",
			escapeIdentifier(id.Database), escapeIdentifier(id.Role))
		if _, err := conn.Exec(ctx, query); err != nil {
			return service.NewDatabaseError("create database", id.Database, err)
		}
	}

	return nil
}

// Deprovision tears down the identity: terminate all backends bound to the
// database, drop the database, then drop the role. The explicit ordering
// prevents dropping a role that still owns a database or a database with
// live connections. Each step is conditioned on existence via IF EXISTS.
func (m *Manager) Deprovision(ctx context.Context, id Identity) error {
	ctx, cancel := m.config.Timeouts.WithOperationTimeout(ctx)
	defer cancel()

	conn, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(ctx) }()

	_, err = conn.Exec(ctx,
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()",
		id.Database)
	if err != nil {
		return service.NewDatabaseError("terminate connections", id.Database, err)
	}

	query := fmt.Sprintf("DROP DATABASE IF EXISTS %s", escapeIdentifier(id.Database))
	if _, err := conn.Exec(ctx, query); err != nil {
		return service.NewDatabaseError("drop database", id.Database, err)
	}

	query = fmt.Sprintf("DROP ROLE IF EXISTS %s", escapeIdentifier(id.Role))
	if _, err := conn.Exec(ctx, query); err != nil {
		return service.NewDatabaseError("drop role", id.Role, err)
	}

	return nil
}

// Ping verifies the administrator connection parameters.
func (m *Manager) Ping(ctx context.Context) error {
	conn, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(ctx) }()

	var one int
	if err := conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return service.NewConnectionError(m.config.Host, m.config.Port, err)
	}
	return nil
}

func (m *Manager) roleExists(ctx context.Context, conn Conn, role string) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname = $1)",
		role).Scan(&exists)
	return exists, err
}

func (m *Manager) databaseExists(ctx context.Context, conn Conn, database string) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)",
		database).Scan(&exists)
	return exists, err
}

// escapeIdentifier escapes a SQL identifier (role, database). Instance
// names are user controlled so identifiers are always quoted.
func escapeIdentifier(s string) string {
	escaped := strings.ReplaceAll(s, `"`, `""`)
	return `"` + escaped + `"`
}

// escapeLiteral escapes a SQL string literal
func escapeLiteral(s string) string {
	escaped := strings.ReplaceAll(s, `'`, `''`)
	return `'` + escaped + `'`
}
