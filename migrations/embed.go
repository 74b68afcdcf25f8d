// Package migrations embeds the goose SQL migrations for the Postgres store.
// They are applied by `rentald serve` at startup, by `rentald migrate`, and
// by the integration tests.
package migrations

import "embed"

// FS holds every *.sql migration, in goose's numbered naming scheme.
//
//go:embed *.sql
var FS embed.FS
