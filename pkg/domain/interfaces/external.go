package interfaces

import "context"

// TemplateEngine renders a template string against a data object. The
// core only produces the data contract; template syntax is opaque to it.
type TemplateEngine interface {
	AddTemplate(name, src string) error
	Render(name string, data any) (string, error)
}

// ContentLoader resolves a source locator (local path, HTTPS URL, or a
// package-URL style reference with optional checksum qualifier) to its
// content.
type ContentLoader interface {
	Load(ctx context.Context, locator string) (string, error)
}
