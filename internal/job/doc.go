// Package job runs the application's background work: a persisted job
// queue processed by a worker pool with crash recovery and a stuck-job
// monitor, the story generation job triggered when a task begins, and
// the rescheduler that resets due recurring tasks.
package job
