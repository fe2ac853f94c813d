// Package migrations embeds the SQL schema applied by db.Migrate and cmd/migrate_apply.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
