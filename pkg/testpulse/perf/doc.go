// Package perf provides the performance-telemetry aggregator: an
// append-only per-endpoint store of API call samples and a Monitor
// facade computing rolling statistics over them.
//
// Statistics are recomputed from the live sample set on every read -
// there are no incrementally maintained running aggregates that could
// drift. Percentiles use the nearest-rank method on the ascending
// duration sort, without interpolation.
//
// Retention is bounded per key by sample count (oldest evicted first)
// and optionally by sample age.
package perf
