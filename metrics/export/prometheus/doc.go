// Package prometheus renders service metrics in Prometheus text exposition
// format without depending on the Prometheus client library. It lives in
// its own module path segment so the core module stays free of exporter
// concerns.
package prometheus
