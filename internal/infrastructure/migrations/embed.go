package migrations

import "embed"

//go:embed mysql/*.sql postgres/*.sql sqlite/*.sql
var files embed.FS
