/*
Package observability turns history events into logs, metrics and streams.

Everything here is built from domain.HistoryHooks: Metrics records
Prometheus counters and stack gauges, LogHooks writes structured slog
records, and Broadcaster fans events out to live subscribers. Combine merges
several hook sets into the one a History accepts.
*/
package observability
