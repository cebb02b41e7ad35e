// Package registry provides a process-wide registry of named notification
// type configurations.
//
// A notification type describes how a class of events is leveled, worded and
// delivered: a severity level, a default verb, an email subject template, a
// message source (inline template string or external template reference) and
// per-channel delivery defaults.
//
// The registry is a service instance rather than package-level state so that
// tests and multi-tenant setups can hold several isolated registries. It is
// seeded with a built-in "default" type and is expected to be populated during
// process startup; steady-state traffic only reads from it.
//
// # Basic Usage
//
//	reg := registry.New()
//
//	err := reg.Register("device_down", registry.Config{
//	    Level:        registry.LevelError,
//	    Verb:         "went offline",
//	    VerboseName:  "Device Down",
//	    EmailSubject: "[{{.Site.Name}}] Device {{.Notification.Verb}}",
//	    Message:      "Device [{{.Actor}}]({{.ActorLink}}) {{.Notification.Verb}}",
//	}, "device")
//
//	cfg, err := reg.Get("device_down")
//
// Registration failures are configuration errors: they are meant to surface at
// startup or deploy time, never during request handling.
package registry
