// Package internal contains helper utilities that are intentionally private
// to the auth module: session ID and rotating-secret generation, secret
// hashing, and the opaque refresh-token codec.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - rate — Redis-backed rate limit primitives for login and rotation
//
// # What this package must NOT do
//
//   - Export types that appear in the public auth API.
//   - Be imported by any package outside this module.
package internal
