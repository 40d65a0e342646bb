// Package postgres provides the PostgreSQL implementations of the
// persistence interfaces in internal/store and internal/job. It owns
// query execution, row scanning, error mapping and the row-level
// locking used to serialize concurrent task and invite mutations.
package postgres
