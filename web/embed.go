// Package web carries the default page templates compiled into the binary.
package web

import "embed"

//go:embed templates/*.html
var TemplateFS embed.FS
