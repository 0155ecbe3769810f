package db

import "embed"

// MigrationFS embeds the SQL migrations applied by cmd/migrate and MIGRATE_ON_START.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
