// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/marquee/marquee/internal/auth"
	"github.com/marquee/marquee/internal/auth/postgres"
)

var _ = Describe("IdentityRepository", func() {
	var (
		ctx  context.Context
		repo *postgres.IdentityRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = postgres.NewIdentityRepository(testPool)
		_, err := testPool.Exec(ctx, `TRUNCATE identities CASCADE`)
		Expect(err).NotTo(HaveOccurred())
	})

	It("round-trips an identity", func() {
		identity, err := auth.NewIdentity("alice", "a@x.io", "Alice", "$argon2id$h", "salt")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(ctx, identity)).To(Succeed())

		got, err := repo.GetByUsername(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(identity.ID))
		Expect(got.PasswordSalt).To(Equal("salt"))

		byID, err := repo.GetByID(ctx, identity.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.Username).To(Equal("alice"))
	})

	It("treats usernames as case-sensitive", func() {
		identity, err := auth.NewIdentity("alice", "", "", "h", "s")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(ctx, identity)).To(Succeed())

		_, err = repo.GetByUsername(ctx, "Alice")
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())

		upper, err := auth.NewIdentity("Alice", "", "", "h", "s")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(ctx, upper)).To(Succeed())
	})

	It("lets exactly one concurrent registration win", func() {
		const racers = 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			ok, dups int
		)
		for range racers {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				identity, err := auth.NewIdentity("racer", "", "", "h", "s")
				Expect(err).NotTo(HaveOccurred())
				err = repo.Create(ctx, identity)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, auth.ErrDuplicateUsername):
					dups++
				}
			}()
		}
		wg.Wait()
		Expect(ok).To(Equal(1))
		Expect(dups).To(Equal(racers - 1))
	})

	It("updates the credential", func() {
		identity, err := auth.NewIdentity("carol", "", "", "deadbeef", "cafe")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(ctx, identity)).To(Succeed())

		Expect(repo.UpdateCredential(ctx, identity.ID, "$argon2id$new", "newsalt")).To(Succeed())
		got, err := repo.GetByID(ctx, identity.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.PasswordHash).To(Equal("$argon2id$new"))
	})
})

var _ = Describe("WebSessionRepository", func() {
	var (
		ctx      context.Context
		repo     *postgres.WebSessionRepository
		identity *auth.Identity
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = postgres.NewWebSessionRepository(testPool)
		_, err := testPool.Exec(ctx, `TRUNCATE identities CASCADE`)
		Expect(err).NotTo(HaveOccurred())

		identity, err = auth.NewIdentity("session_owner", "", "", "h", "s")
		Expect(err).NotTo(HaveOccurred())
		Expect(postgres.NewIdentityRepository(testPool).Create(ctx, identity)).To(Succeed())
	})

	It("stores, finds and deletes a session", func() {
		_, hash, err := auth.GenerateSessionToken()
		Expect(err).NotTo(HaveOccurred())
		session, err := auth.NewWebSession(identity.ID, hash, "ua", "127.0.0.1", time.Now().Add(time.Hour))
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(ctx, session)).To(Succeed())

		got, err := repo.GetByTokenHash(ctx, hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.IdentityID).To(Equal(identity.ID))

		Expect(repo.UpdateLastSeen(ctx, session.ID, time.Now())).To(Succeed())
		Expect(repo.Delete(ctx, session.ID)).To(Succeed())
		Expect(errors.Is(repo.Delete(ctx, session.ID), auth.ErrNotFound)).To(BeTrue())
	})

	It("reaps only expired sessions", func() {
		for _, offset := range []time.Duration{-2 * time.Hour, -time.Minute, time.Hour} {
			_, hash, err := auth.GenerateSessionToken()
			Expect(err).NotTo(HaveOccurred())
			session, err := auth.NewWebSession(identity.ID, hash, "", "", time.Now().Add(offset))
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Create(ctx, session)).To(Succeed())
		}

		n, err := repo.DeleteExpired(ctx, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(2)))
	})
})
