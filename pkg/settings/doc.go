// Package settings holds the per-user notification preference rules.
//
// A Setting overrides the web/email delivery defaults of one notification
// type for one (user, organization) pair. Both flags are tri-state: nil means
// "use the type's default". Normalize keeps storage minimal by clearing any
// value equal to the default, so rows only ever record actual overrides, and
// the save-time rule "email requires web" forces email off whenever the
// effective web value is off.
//
// An IgnoreRule suppresses notifications about one object for one user until
// its expiry. Expired rules are logically dead immediately; the Sweeper is
// the periodic cleanup removing them from storage.
package settings
