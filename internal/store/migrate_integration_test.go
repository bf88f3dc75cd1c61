//go:build integration

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/marquee/marquee/internal/store"
)

var _ = Describe("Migrator", func() {
	var migrator *store.Migrator

	BeforeEach(func() {
		var err error
		migrator, err = store.NewMigrator(databaseURL)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = migrator.Close() })
	})

	It("walks the full up/down cycle", func() {
		Expect(migrator.Down()).To(Succeed())

		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
		Expect(dirty).To(BeFalse())

		Expect(migrator.Up()).To(Succeed())
		version, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(3)))

		Expect(migrator.Steps(-1)).To(Succeed())
		version, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(2)))

		_, pending, err := migrator.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(HaveLen(1))

		Expect(migrator.Up()).To(Succeed())
	})

	It("creates the tables the repositories use", func() {
		Expect(migrator.Up()).To(Succeed())

		pool, err := store.Connect(context.Background(), databaseURL)
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()

		for _, table := range []string{"identities", "web_sessions", "movies"} {
			var exists bool
			err := pool.QueryRow(context.Background(),
				`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, table).
				Scan(&exists)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue(), "table %s", table)
		}
	})
})
