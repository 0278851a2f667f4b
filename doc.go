// Package auth manages authentication and session lifecycle for a web
// property with a public site and an admin backend: short-lived signed
// access tokens, durable Redis-backed sessions secured by a rotating
// one-use secret, and role-gated request admission.
//
// The package is built for concurrent server workloads: Service methods are
// safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// auth is the public surface. It exposes [Service], [Builder], [Config],
// and value types (LoginResult, Identity, MetricsSnapshot). Session
// encoding, rate limiting, and audit dispatch live under internal/ and are
// never exported. The token, session, and password sub-packages are usable
// standalone but never import this package.
//
// # Performance contract
//
// VerifyAccess is the hot path and completes without any Redis round trip.
// ResolveSession, Login, and Rotate are allowed store round trips;
// rotation's compare-and-swap is a single Redis script invocation.
package auth
