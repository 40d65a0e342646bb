// Package api contains the HTTP handlers, request/response models and
// error mapping for the quest log API.
package api
