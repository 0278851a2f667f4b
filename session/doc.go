// Package session provides Redis-backed credential-store persistence and a
// compact binary session encoding.
//
// # Rotation contract
//
// [Store.Rotate] runs the lookup, secret-hash comparison, and swap in a
// single Lua script, so rotation attempts for one session ID are linearized
// by Redis. Two concurrent attempts presenting the same valid secret yield
// exactly one success; the loser trips [ErrSecretMismatch], which also
// destroys the session (theft detection).
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Session] model.
// It does NOT mint tokens, hash passwords, or decide authentication policy —
// those responsibilities belong to the Service.
//
// # What this package must NOT do
//
//   - Import the root auth package or token (no upward imports).
//   - Store plaintext secrets in [Session] fields.
package session
