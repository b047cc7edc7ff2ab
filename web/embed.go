// Package web holds the UI templates and static assets compiled into the
// ledger binary.
package web

import "embed"

// TemplatesFS holds the page and its HTMX partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the small script that reacts to
// HX-Trigger events.
//
//go:embed static/*
var StaticFS embed.FS
