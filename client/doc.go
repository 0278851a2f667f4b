// Package client is the consumer-side refresh coordinator. Server code
// never imports it; it exists for Go clients of a service gated by this
// module.
//
// The server destroys a session when its rotation secret is presented
// twice, so a client process with concurrent request goroutines must never
// let two of them rotate independently. [Coordinator.Refresh] collapses
// concurrent refresh attempts for the same credential generation into one
// rotation round trip via singleflight; [Client] wires that into an
// http.Client with a single retry after 401.
package client
