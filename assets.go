// Package voxa provides embedded page templates for production builds.
package voxa

import "embed"

// In dev mode (IsDev=true), templates are loaded from disk for hot reloading.
// In production mode they are served from this embedded filesystem.

//go:embed web/templates/*.tmpl
var TemplateFS embed.FS
