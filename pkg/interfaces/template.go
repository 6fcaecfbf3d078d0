package interfaces

import "io"

// TemplateRenderer renders named templates into HTML. The generator ships a
// html/template backed implementation; hosts can substitute their own engine.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
