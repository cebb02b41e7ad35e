// Package pg establishes the PostgreSQL connection pool backing the
// production notification storage, and applies the module's embedded schema
// migrations.
package pg
