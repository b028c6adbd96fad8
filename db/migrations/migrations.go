// Package migrations embeds the goose migration scripts. Postgres holds the
// admin-facing catalog (products, translations); Turso sqlite holds the
// import-draft queue state.
package migrations

import "embed"

//go:embed postgres/*.sql
var PostgresFS embed.FS

//go:embed sqlite/*.sql
var SQLiteFS embed.FS
