// Package render produces the human-readable message body and email subject
// of a notification on demand.
//
// The pipeline pulls the notification type's configuration from the registry,
// resolves the actor/action-object/target references through the read-through
// cache, renders the configured message source (inline template string or
// external template) and converts the result to sanitized markup.
//
// Render-time context (resolved objects and their links) is an immutable
// value built per call and passed to the template; the notification itself is
// never mutated, so concurrent renders of the same instance are safe.
//
// Failure policy: a notification whose message or subject cannot render is
// unrecoverable. The error is logged, an asynchronous deletion of the
// notification is enqueued fire-and-forget, and ErrRenderFailed propagates to
// the caller, who must treat it as "nothing to show", not as a transient
// failure to retry.
package render
