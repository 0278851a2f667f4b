// Package middleware provides the HTTP admission layer: [Gate] resolves a
// request's credential (bearer token first, cookie pair as fallback) and
// [RequireRoles] enforces role sets on admitted requests.
//
// The gate never distinguishes failure causes to the client. Missing,
// malformed, expired, and revoked credentials all produce a bare 401; only
// a valid identity with the wrong role produces 403.
package middleware
