package view

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("view").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
}).ParseFS(templateFS, "templates/*.html"))

func execute(w io.Writer, name string, data any) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return goerr.Wrap(err, "failed to execute template", goerr.V("template", name))
	}
	return nil
}
