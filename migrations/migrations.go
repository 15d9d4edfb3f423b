// Package migrations embeds the schema for the SQL-backed remote store.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
