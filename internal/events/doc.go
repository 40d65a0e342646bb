// Package events decouples the services from the background job
// runner. Services emit JobRequestEvents (story generation requests)
// without knowing which handlers will process them; the job package
// registers a handler that enqueues the corresponding job.
package events
