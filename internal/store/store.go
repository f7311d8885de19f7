// Package store provides ObservationStore and AlertStore implementations:
// an in-memory store for single-instance deployments and tests, and a
// Postgres store for durable deployments.
package store

import "github.com/i474232898/weather-monitoring/internal/weather"

var (
	_ weather.ObservationStore = (*MemoryStore)(nil)
	_ weather.AlertStore       = (*MemoryStore)(nil)
	_ weather.ObservationStore = (*PostgresStore)(nil)
	_ weather.AlertStore       = (*PostgresStore)(nil)
)
