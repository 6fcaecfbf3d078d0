package markdown

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/site/primitive-obsession.md")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Primitive Obsession" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if fm.Slug != "primitive-obsession" {
		t.Fatalf("FrontMatter Slug mismatch, got %q", fm.Slug)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "refactoring" {
		t.Fatalf("FrontMatter Tags mismatch: %#v", fm.Tags)
	}
	if len(fm.Images) != 1 || fm.Images[0] != "/static/images/primitives/cover.png" {
		t.Fatalf("FrontMatter Images mismatch: %#v", fm.Images)
	}
	if fm.Draft {
		t.Fatalf("expected draft to default to false")
	}
	if fm.Custom["custom_flag"] != true {
		t.Fatalf("FrontMatter Custom flag missing: %#v", fm.Custom)
	}
	if fm.Raw["summary"] != "Why raw strings and ints erode a domain model over time." {
		t.Fatalf("FrontMatter Raw summary missing: %#v", fm.Raw)
	}
	if len(body) == 0 || !strings.Contains(string(body), "# Primitive Obsession") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
}

func TestParseFrontMatter_DateOnly(t *testing.T) {
	data := readFixture(t, "testdata/site/drafts/nominal-typing.md")

	fm, _, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if !fm.Draft {
		t.Fatalf("expected draft flag to be parsed")
	}
	if !fm.HasDate() {
		t.Fatalf("expected date-only value to parse")
	}
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !fm.Date.Equal(want) {
		t.Fatalf("expected %v, got %v", want, fm.Date)
	}
}

func TestParseFrontMatter_UnparseableDate(t *testing.T) {
	source := []byte(`---
title: Broken Date
date: not-a-real-date
---
Body text.
`)

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.HasDate() {
		t.Fatalf("expected unparseable date to yield the zero time, got %v", fm.Date)
	}
	if fm.Title != "Broken Date" {
		t.Fatalf("expected remaining fields to survive, got title %q", fm.Title)
	}
	if !strings.Contains(string(body), "Body text.") {
		t.Fatalf("expected body to be returned, got %q", string(body))
	}
}

func TestParseFrontMatter_QuotedDate(t *testing.T) {
	source := []byte(`---
title: Quoted Date
date: "2024-06-01"
---
Body.
`)

	fm, _, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !fm.Date.Equal(want) {
		t.Fatalf("expected %v, got %v", want, fm.Date)
	}
}

func TestBuildDocument(t *testing.T) {
	data := readFixture(t, "testdata/site/primitive-obsession.md")
	modified := time.Now().UTC()

	doc, err := BuildDocument("testdata/site/primitive-obsession.md", data, modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}

	if doc.FilePath != "testdata/site/primitive-obsession.md" {
		t.Fatalf("expected FilePath to be set, got %q", doc.FilePath)
	}
	if doc.LastModified != modified {
		t.Fatalf("expected LastModified to equal the provided timestamp")
	}
	if len(doc.Body) == 0 {
		t.Fatalf("expected Body to contain markdown content")
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkParser_SanitizeScrubsRawHTML(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{Sanitize: true})

	html, err := parser.Parse([]byte("keep <em>this</em>\n\n<script>alert(1)</script>\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if strings.Contains(got, "<script>") || strings.Contains(got, "alert(1)") {
		t.Fatalf("expected script content to be scrubbed, got %q", got)
	}
	if !strings.Contains(got, "<em>this</em>") {
		t.Fatalf("expected benign inline HTML to survive, got %q", got)
	}
}

func TestGoldmarkParser_SafeModeOmitsRawHTML(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{SafeMode: true})

	html, err := parser.Parse([]byte("text\n\n<div>raw block</div>\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if strings.Contains(got, "<div>") {
		t.Fatalf("expected raw HTML to be omitted, got %q", got)
	}
	if !strings.Contains(got, "text") {
		t.Fatalf("expected markdown content to render, got %q", got)
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
