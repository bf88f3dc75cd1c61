// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package auth provides authentication primitives for Marquee.
//
// # Domain Types
//
// Domain types (Identity, WebSession) should be created using their
// respective constructors:
//   - NewIdentity - creates an Identity with a validated username and credential
//   - NewWebSession - creates a WebSession with validated identity and expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// # Strategies
//
// Two strategies authenticate requests:
//   - Service - registration, username/password login and cookie sessions
//   - TokenAuthenticator - bearer tokens minted by TokenIssuer
//
// Strategies are plain values. The web layer receives them through its
// constructor and binds one strategy per protected route.
package auth
