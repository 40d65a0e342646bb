// Package store defines the persistence interfaces for the quest log
// engine and the transaction helper the services use to group writes.
// Implementations live in internal/platform/postgres; keeping the
// interfaces here lets services and tests stay independent of the
// database technology.
package store
