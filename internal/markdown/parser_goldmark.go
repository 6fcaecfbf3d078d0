package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// GoldmarkParser renders article bodies through goldmark. It carries no
// per-document state, so one instance can serve a whole load concurrently.
type GoldmarkParser struct {
	defaults interfaces.ParseOptions
}

// NewGoldmarkParser returns a parser seeded with the given defaults.
// Zero-value defaults mean GFM extensions with raw HTML passed through.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{defaults: defaults}
}

// Parse renders markdown with the parser's default options.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaults)
}

// ParseWithOptions renders markdown with per-call overrides. SafeMode drops
// raw HTML blocks entirely; Sanitize lets them through the renderer and then
// scrubs the output with a UGC policy, so benign inline markup survives while
// scripts and event handlers do not.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := buildEngine(opts).Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	if opts.Sanitize {
		return sanitizePolicy().SanitizeBytes(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	policyOnce sync.Once
	ugcPolicy  *bluemonday.Policy
)

// sanitizePolicy builds the shared bluemonday policy lazily; constructing one
// is not free and the policy is safe for concurrent use.
func sanitizePolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

func buildEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	rendererOpts := []renderer.Option{}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	return goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
		goldmark.WithExtensions(resolveExtensions(opts.Extensions)...),
	)
}

var knownExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// resolveExtensions maps configured extension names onto goldmark extenders.
// Unknown names are skipped rather than failing the parse setup, so a config
// written for a newer version still renders.
func resolveExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify, extension.TaskList}
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]goldmark.Extender, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if ext, ok := knownExtensions[key]; ok {
			out = append(out, ext)
		}
	}
	return out
}
