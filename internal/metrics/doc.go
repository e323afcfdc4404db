// Package metrics defines the Prometheus collectors exported by the service.
//
// Metrics cover four areas: HTTP traffic (via the middleware package),
// extraction attempts per persona, pipeline runs and stage timings, and
// external encoder invocations per tier. All collectors are registered with
// the default registry via promauto at package load; InitializeMetrics
// pre-populates known label combinations so dashboards see zeros instead of
// absent series.
package metrics
