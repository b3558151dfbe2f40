// Package migrations embeds the goose SQL migrations that repomanager
// applies at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
