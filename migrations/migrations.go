// Package migrations embeds the database schema.
package migrations

import "embed"

// FS holds the versioned up/down SQL files under sql/.
//
//go:embed sql/*.sql
var FS embed.FS

// Dir is the directory inside FS containing the migrations.
const Dir = "sql"
