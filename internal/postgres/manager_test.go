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

package postgres

import (
	"context"
	"errors"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/odoo-operator/internal/service"
)

var _ = Describe("Lifecycle Manager", func() {
	var (
		ctx     context.Context
		mock    pgxmock.PgxConnIface
		manager *Manager
		id      Identity
	)

	config := Config{Host: "localhost", Port: 5432, AdminUser: "postgres", AdminPassword: "pw"}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		mock, err = pgxmock.NewConn()
		Expect(err).NotTo(HaveOccurred())

		manager = NewManagerWithDial(config, func(context.Context) (Conn, error) {
			return mock, nil
		})
		id = DeriveIdentity("myshop", "default")
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	roleExistsQuery := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname = $1)")
	dbExistsQuery := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)")

	Describe("Provision", func() {
		It("creates role and database when neither exists", func() {
			mock.ExpectQuery(roleExistsQuery).
				WithArgs(id.Role).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			mock.ExpectExec(regexp.QuoteMeta(`CREATE ROLE "odoo_user_default_myshop" WITH LOGIN PASSWORD 'secret'`)).
				WillReturnResult(pgxmock.NewResult("CREATE ROLE", 1))
			mock.ExpectQuery(dbExistsQuery).
				WithArgs(id.Database).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			mock.ExpectExec(regexp.QuoteMeta(`CREATE DATABASE "odoo_default_myshop" OWNER "odoo_user_default_myshop"`)).
				WillReturnResult(pgxmock.NewResult("CREATE DATABASE", 1))
			mock.ExpectClose()

			Expect(manager.Provision(ctx, id, "secret")).To(Succeed())
		})

		It("resets the password and reassigns ownership when both exist", func() {
			mock.ExpectQuery(roleExistsQuery).
				WithArgs(id.Role).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			mock.ExpectExec(regexp.QuoteMeta(`ALTER ROLE "odoo_user_default_myshop" WITH LOGIN PASSWORD 'rotated'`)).
				WillReturnResult(pgxmock.NewResult("ALTER ROLE", 1))
			mock.ExpectQuery(dbExistsQuery).
				WithArgs(id.Database).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			mock.ExpectExec(regexp.QuoteMeta(`ALTER DATABASE "odoo_default_myshop" OWNER TO "odoo_user_default_myshop"`)).
				WillReturnResult(pgxmock.NewResult("ALTER DATABASE", 1))
			mock.ExpectClose()

			Expect(manager.Provision(ctx, id, "rotated")).To(Succeed())
		})

		It("escapes quotes in the password literal", func() {
			mock.ExpectQuery(roleExistsQuery).
				WithArgs(id.Role).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			mock.ExpectExec(regexp.QuoteMeta(`ALTER ROLE "odoo_user_default_myshop" WITH LOGIN PASSWORD 'it''s'`)).
				WillReturnResult(pgxmock.NewResult("ALTER ROLE", 1))
			mock.ExpectQuery(dbExistsQuery).
				WithArgs(id.Database).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			mock.ExpectExec("ALTER DATABASE").
				WillReturnResult(pgxmock.NewResult("ALTER DATABASE", 1))
			mock.ExpectClose()

			Expect(manager.Provision(ctx, id, "it's")).To(Succeed())
		})

		It("wraps DDL failures as database errors", func() {
			mock.ExpectQuery(roleExistsQuery).
				WithArgs(id.Role).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			mock.ExpectExec("CREATE ROLE").
				WillReturnError(errors.New("permission denied"))
			mock.ExpectClose()

			err := manager.Provision(ctx, id, "secret")
			Expect(err).To(HaveOccurred())
			Expect(service.IsDatabaseError(err)).To(BeTrue())
		})
	})

	Describe("Deprovision", func() {
		It("terminates connections, then drops database, then role", func() {
			mock.ExpectExec(regexp.QuoteMeta("SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()")).
				WithArgs(id.Database).
				WillReturnResult(pgxmock.NewResult("SELECT", 0))
			mock.ExpectExec(regexp.QuoteMeta(`DROP DATABASE IF EXISTS "odoo_default_myshop"`)).
				WillReturnResult(pgxmock.NewResult("DROP DATABASE", 1))
			mock.ExpectExec(regexp.QuoteMeta(`DROP ROLE IF EXISTS "odoo_user_default_myshop"`)).
				WillReturnResult(pgxmock.NewResult("DROP ROLE", 1))
			mock.ExpectClose()

			Expect(manager.Deprovision(ctx, id)).To(Succeed())
		})

		It("surfaces drop failures as database errors", func() {
			mock.ExpectExec("pg_terminate_backend").
				WithArgs(id.Database).
				WillReturnResult(pgxmock.NewResult("SELECT", 0))
			mock.ExpectExec("DROP DATABASE").
				WillReturnError(errors.New("still in use"))
			mock.ExpectClose()

			err := manager.Deprovision(ctx, id)
			Expect(err).To(HaveOccurred())
			Expect(service.IsDatabaseError(err)).To(BeTrue())
		})
	})

	Describe("dial failures", func() {
		It("propagates connection errors from Provision", func() {
			failing := NewManagerWithDial(config, func(context.Context) (Conn, error) {
				return nil, service.NewConnectionError("localhost", 5432, errors.New("refused"))
			})

			err := failing.Provision(ctx, DeriveIdentity("a", "b"), "pw")
			Expect(service.IsConnectionFailed(err)).To(BeTrue())
		})
	})
})
