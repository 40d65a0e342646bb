// Package service contains the application's business logic, sitting
// between the HTTP handlers and the persistence layer. Services enforce
// authorization, run multi-step operations inside transactions, append
// activity records, and emit events for background work.
package service
