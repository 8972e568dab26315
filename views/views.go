// Package views embeds the HTML templates rendered by the django engine.
package views

import "embed"

//go:embed *.html auth backend errors events
var FS embed.FS
