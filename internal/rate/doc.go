// Package rate provides Redis-backed fixed-window counters used to throttle
// login and session-rotation attempts.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - al:  — login per-identifier
//   - ali: — login per-IP
//   - ar:  — rotation per-session
//
// # What this package must NOT do
//
//   - Decide which operations are throttled (the Service does).
//   - Be imported outside this module.
package rate
