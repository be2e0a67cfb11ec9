// Package leadscout holds module-level embedded assets.
package leadscout

import "embed"

// Migrations embeds the goose SQL migrations so the migrate command can run
// them without access to the source tree.
//
//go:embed migrations/*.sql
var Migrations embed.FS
