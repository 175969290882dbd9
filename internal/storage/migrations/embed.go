package migrations

import "embed"

// PostgresFS embeds the session summary archive schema.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the tick store schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
