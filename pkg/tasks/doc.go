// Package tasks provides in-process, fire-and-forget task dispatch.
//
// The rendering pipeline uses it for exactly one failure-handling policy: a
// notification whose message cannot render is unrecoverable, so a
// DeleteNotification task is enqueued before the render error propagates.
// Enqueue never blocks on the handler; the task runs on its own goroutine,
// detached from the caller's context cancellation.
//
// Handlers are matched by the qualified name of the payload struct, the same
// convention a durable queue would use, so swapping the dispatcher for a
// queue-backed implementation is a drop-in change.
package tasks
