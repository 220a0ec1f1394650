// Package migrations embeds the versioned SQL schema for each supported driver.
package migrations

import "embed"

// FS holds sqlite/*.sql and postgres/*.sql in golang-migrate naming.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
