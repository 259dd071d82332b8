package dashboard

import (
	"embed"
	"fmt"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html templates/**/*.html
var embeddedTemplates embed.FS

// TemplatesFS returns the page and widget templates rooted at the template
// directory, so names read "page" and "widgets/kpi".
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(fmt.Sprintf("dashboard: embedded templates: %v", err))
	}
	return sub
}

// NewTemplateRenderer creates a go-template renderer over the embedded
// templates. It does not read from the working directory.
func NewTemplateRenderer() (Renderer, error) {
	return NewTemplateRendererFS(TemplatesFS())
}

// NewTemplateRendererFS builds the renderer over a caller supplied template
// tree, for deployments that override the page markup.
func NewTemplateRendererFS(templates fs.FS) (Renderer, error) {
	if templates == nil {
		return nil, fmt.Errorf("dashboard: template fs is nil")
	}
	return template.NewRenderer(
		template.WithFS(templates),
		template.WithExtension(".html"),
	)
}
