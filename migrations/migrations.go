// Package migrations embeds the audit log schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
