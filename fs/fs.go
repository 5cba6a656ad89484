// Package appfs embeds the assets the binaries need at runtime:
// database migrations, page & email templates and the common-passwords list.
package appfs

import "embed"

//go:embed all:migrations all:templates all:assets
var FS embed.FS
