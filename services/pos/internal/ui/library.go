package ui

import (
	"errors"
	"io"

	aqmtemplate "github.com/aquamarinepk/aqm/template"
)

// Renderer executes a named template from the console's template library.
// layout selects the entry point: a full page layout such as "base.html", or
// a fragment name when a view is composed into a parent's outlet.
type Renderer interface {
	Render(w io.Writer, templateName, layout string, data map[string]interface{}) error
}

// TemplateLibrary renders templates loaded by the aqm template manager.
type TemplateLibrary struct {
	mgr *aqmtemplate.Manager
}

func NewTemplateLibrary(mgr *aqmtemplate.Manager) *TemplateLibrary {
	return &TemplateLibrary{mgr: mgr}
}

func (l *TemplateLibrary) Render(w io.Writer, templateName, layout string, data map[string]interface{}) error {
	if l == nil || l.mgr == nil {
		return errors.New("template library not configured")
	}
	tmpl, err := l.mgr.Get(templateName)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, layout, data)
}
