// Package notification holds the notification domain model and its storage
// contract.
//
// A notification references a registered type by name and up to three related
// entities (actor, action object, target) as polymorphic references. Its
// rendered message is not stored; rendering happens on demand in pkg/render.
//
// Storage is pluggable: MemoryStorage serves development and tests,
// PostgresStorage is the production implementation backed by pgx.
package notification
