package generator

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// HTMLRenderer renders pages with html/template. It ships with embedded
// default layouts and accepts a directory of overrides so sites can restyle
// without forking the generator.
type HTMLRenderer struct {
	templates *template.Template
}

// NewHTMLRenderer loads the embedded templates, then layers any *.html files
// from dir on top. An empty dir keeps the defaults.
func NewHTMLRenderer(dir string) (*HTMLRenderer, error) {
	root := template.New("blog").Funcs(templateFuncs())

	root, err := root.ParseFS(defaultTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("generator: parse embedded templates: %w", err)
	}

	if dir = strings.TrimSpace(dir); dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("generator: scan template overrides: %w", err)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(dir); statErr != nil {
				return nil, fmt.Errorf("generator: template dir %s: %w", dir, statErr)
			}
		} else {
			root, err = root.ParseFiles(matches...)
			if err != nil {
				return nil, fmt.Errorf("generator: parse template overrides: %w", err)
			}
		}
	}

	return &HTMLRenderer{templates: root}, nil
}

// Render executes the named template. Extra writers receive a copy of the
// output in addition to the returned string.
func (r *HTMLRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	if r == nil || r.templates == nil {
		return "", fmt.Errorf("generator: renderer not initialised")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("generator: template name is required")
	}
	if !strings.Contains(name, ".") {
		name += ".html"
	}
	var builder strings.Builder
	if err := r.templates.ExecuteTemplate(&builder, name, data); err != nil {
		return "", err
	}
	rendered := builder.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return rendered, err
		}
	}
	return rendered, nil
}

// RenderString parses and executes an inline template.
func (r *HTMLRenderer) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	tmpl, err := template.New("inline").Funcs(templateFuncs()).Parse(templateContent)
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	if err := tmpl.Execute(&builder, data); err != nil {
		return "", err
	}
	rendered := builder.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return rendered, err
		}
	}
	return rendered, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// Article bodies are already rendered to HTML by the Markdown parser.
		"safeHTML": func(value any) template.HTML {
			switch typed := value.(type) {
			case []byte:
				return template.HTML(typed)
			case string:
				return template.HTML(typed)
			case template.HTML:
				return typed
			default:
				return template.HTML(fmt.Sprint(typed))
			}
		},
	}
}

var _ interfaces.TemplateRenderer = (*HTMLRenderer)(nil)
