package web

import "embed"

// Templates embeds the HTML page templates.
//
//go:embed templates/*.html
var Templates embed.FS
