package migrations

import "embed"

// Migrations holds the golang-migrate up/down scripts for the sqlite driver.
//
//go:embed *.sql
var Migrations embed.FS
