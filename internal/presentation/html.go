package presentation

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageTemplateName is the name gin renders for the single page
const PageTemplateName = "page.html"

// PageData is everything the single page needs: the submission form, the
// error surface and the result panel.
type PageData struct {
	Title          string
	Draft          string
	Loading        bool
	CanSubmit      bool
	ButtonLabel    string
	Error          string
	Result         *ResultView
	RefreshSeconds int
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is Templates for program start-up
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// RenderPage writes the full page to w
func RenderPage(w io.Writer, tmpl *template.Template, data PageData) error {
	return tmpl.ExecuteTemplate(w, PageTemplateName, data)
}
