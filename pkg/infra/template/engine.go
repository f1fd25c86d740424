package template

import (
	"bytes"
	"text/template"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
)

// Engine implements the TemplateEngine interface over text/template.
type Engine struct {
	root *template.Template
}

// New creates an empty template engine
func New() *Engine {
	return &Engine{
		root: template.New(""),
	}
}

var _ interfaces.TemplateEngine = (*Engine)(nil)

// AddTemplate parses and registers a named template
func (e *Engine) AddTemplate(name, src string) error {
	if _, err := e.root.New(name).Parse(src); err != nil {
		return goerr.Wrap(err, "failed to parse template", goerr.V("name", name))
	}
	return nil
}

// Render executes a registered template against data
func (e *Engine) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.root.ExecuteTemplate(&buf, name, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute template", goerr.V("name", name))
	}
	return buf.String(), nil
}
