// Package token is the stateless access-token codec: it mints short-lived
// signed credentials binding a user ID, a role snapshot, and the originating
// session ID, and verifies them without touching the credential store.
//
// # Error contract
//
// Verification fails with exactly two sentinels. [ErrExpired] means the
// token was well formed and correctly signed but its time has passed, where
// expiry is a closed bound (checked at the exact expiry instant, the token
// is expired). [ErrMalformed] covers every other failure.
//
// # What this package must NOT do
//
//   - Consult Redis or any store. Revocation before expiry is the session
//     layer's job.
//   - Leak which verification step failed beyond the two sentinels.
package token
