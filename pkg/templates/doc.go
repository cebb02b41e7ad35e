// Package templates resolves named external message templates from a file
// system.
//
// The resolver is the registration-time collaborator of the type registry:
// a notification type referencing an external template must resolve it when
// the type is registered, so broken references surface at startup instead of
// at first render.
//
//	//go:embed templates/*.md
//	var templateFS embed.FS
//
//	resolver := templates.NewResolver(templateFS)
//	reg := registry.New(registry.WithTemplateResolver(resolver))
//
// Parsed templates are cached; Resolve is safe for concurrent use.
package templates
