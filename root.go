// Package workforce exposes build-time assets embedded into the binary.
package workforce

import "embed"

// Migrations holds the goose SQL migrations applied by the migrate command.
//
//go:embed migrations/*.sql
var Migrations embed.FS
