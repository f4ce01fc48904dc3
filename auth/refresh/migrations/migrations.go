// Package migrations embeds the SQL schema of the Postgres refresh record store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
