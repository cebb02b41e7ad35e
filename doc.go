// Package notifykit is a pluggable notification toolkit: a registry of
// notification types, a template-driven message renderer with cached
// related-object resolution, per-user delivery settings and email delivery.
//
// The root package ties the subsystems together behind a single Service:
//
//	svc := notifykit.New()
//	err := svc.Registry().Register("device_down", registry.Config{
//		Level:        registry.LevelError,
//		Verb:         "went offline",
//		EmailSubject: "[{{.Site.Name}}] {{.Notification.Verb}}",
//		Message:      "Device [{{.Actor}}]({{.ActorLink}}) {{.Notification.Verb}}.",
//	})
//	id, err := svc.Send(ctx, notification.Notification{
//		RecipientID: userID,
//		Type:        "device_down",
//		Actor:       related.Reference{ContentType: "device", ObjectID: deviceID},
//	})
//
// Individual subsystems live under pkg/ and can be used on their own:
// pkg/registry for type definitions, pkg/render for message rendering,
// pkg/related for cached object resolution, pkg/settings for per-user
// delivery preferences and ignore rules, and pkg/email for delivery.
package notifykit
