// Package email delivers rendered notifications over email.
//
// The core rendering pipeline only produces strings; this package is the
// outbound transport built on top of it. Notifier renders a notification's
// subject and body and hands them to an EmailSender, honoring the type's
// delivery defaults and the recipient's per-type setting overrides.
//
// Two senders are provided: a Postmark-backed client for production and a
// writer-backed DevSender for development.
package email
