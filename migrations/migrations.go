// Package migrations embeds the goose SQL migrations so the migrate
// command and integration tests run the same files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Dir is the path of the migrations inside FS.
const Dir = "."
