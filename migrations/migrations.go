// Package migrations carries the embedded goose migration files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
