// Package web holds the embedded HTML views.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	HomeTemplate    = "index.html"
	ResultsTemplate = "results.html"
)

// Templates parses every embedded view.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is Templates for startup code; it panics on a parse error.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}
