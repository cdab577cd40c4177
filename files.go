package federation

import "embed"

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS
