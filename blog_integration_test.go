package blog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
)

func TestModuleLoadAndQuery(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "first.md", `---
title: First Post
date: 2024-01-10
tags: [go, notes]
summary: The first one.
---
Hello **world**.
`)
	writeArticle(t, dir, "second.md", `---
title: Second Post
date: 2024-02-20
tags: [go]
---
More content.
`)
	writeArticle(t, dir, "draft.md", `---
title: Work In Progress
date: 2024-03-01
draft: true
---
Not ready.
`)

	module := newTestModule(t, dir, nil)

	collection, err := module.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if collection.Len() != 3 {
		t.Fatalf("expected 3 articles, got %d", collection.Len())
	}

	published, err := module.ListPublished(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published articles, got %d", len(published))
	}
	if published[0].Slug != "second-post" {
		t.Fatalf("expected newest first, got %s", published[0].Slug)
	}
	if len(published[0].BodyHTML) == 0 {
		t.Fatal("expected rendered body HTML")
	}

	draft, err := module.GetBySlug(context.Background(), "work-in-progress")
	if err != nil {
		t.Fatalf("get draft by slug: %v", err)
	}
	if !draft.Draft {
		t.Fatal("expected draft flag to survive the pipeline")
	}

	if _, err := module.GetBySlug(context.Background(), "missing"); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}

	tags, err := module.ListTags(context.Background())
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Name != "go" || tags[0].Count != 2 {
		t.Fatalf("unexpected first tag: %#v", tags[0])
	}
}

func TestModuleLoadRejectsInvalidFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "untitled.md", `---
date: 2024-01-10
---
No title here.
`)

	module := newTestModule(t, dir, nil)

	_, err := module.Load(context.Background())
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "title" {
		t.Fatalf("expected title field, got %s", verr.Field)
	}
	if !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
}

func TestModuleLoadRejectsUnparseableDate(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "undated.md", `---
title: Undated Post
date: not-a-real-date
---
Body.
`)

	module := newTestModule(t, dir, nil)

	_, err := module.Load(context.Background())
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "date" {
		t.Fatalf("expected date field, got %s", verr.Field)
	}
	if verr.Path == "" {
		t.Fatal("expected the offending path to be reported")
	}
	if !errors.Is(err, ErrDateRequired) {
		t.Fatalf("expected ErrDateRequired, got %v", err)
	}
}

func TestModuleLoadAppliesFrontMatterSchema(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "typed.md", `---
title: Typed Post
date: 2024-01-10
category: 42
---
Body.
`)

	module := newTestModule(t, dir, func(cfg *Config) {
		cfg.FrontMatterSchema = map[string]any{
			"fields": []any{
				map[string]any{"name": "category", "type": "string"},
			},
		}
	})

	_, err := module.Load(context.Background())
	if err == nil {
		t.Fatal("expected schema violation")
	}
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestModuleBuildWritesSite(t *testing.T) {
	contentDir := t.TempDir()
	outputDir := t.TempDir()
	writeArticle(t, contentDir, "post.md", `---
title: Built Post
date: 2024-05-01
tags: [release]
---
Published output.
`)

	module := newTestModule(t, contentDir, func(cfg *Config) {
		cfg.Generator.OutputDir = outputDir
	})

	collection, err := module.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	result, err := module.Generator().Build(context.Background(), collection, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt == 0 {
		t.Fatal("expected pages to be built")
	}
	if _, err := os.Stat(filepath.Join(outputDir, "posts", "built-post", "index.html")); err != nil {
		t.Fatalf("expected article page: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "feed.xml")); err != nil {
		t.Fatalf("expected RSS feed: %v", err)
	}
}

func TestModuleCommandsBuildAndQuery(t *testing.T) {
	contentDir := t.TempDir()
	outputDir := t.TempDir()
	writeArticle(t, contentDir, "post.md", `---
title: Command Post
date: 2024-06-01
tags: [cli]
---
From the command layer.
`)

	module := newTestModule(t, contentDir, func(cfg *Config) {
		cfg.Generator.OutputDir = outputDir
	})
	cmds := module.Commands()

	var total int
	err := cmds.ListArticles.Execute(context.Background(), sitecmd.ListArticlesQuery{
		Callback: func(env sitecmd.ArticlesEnvelope) {
			total = env.Total
		},
	})
	if err != nil {
		t.Fatalf("list articles: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 article, got %d", total)
	}

	buildErr := cmds.BuildSite.Execute(context.Background(), sitecmd.BuildSiteCommand{})
	if buildErr != nil {
		t.Fatalf("build site: %v", buildErr)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "posts", "command-post", "index.html")); err != nil {
		t.Fatalf("expected generated article page: %v", err)
	}
}

func newTestModule(t *testing.T, contentDir string, mutate func(*Config)) *Module {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Site.Title = "Test Blog"
	cfg.Site.BaseURL = "https://blog.example.test"
	cfg.Content.Dir = contentDir
	cfg.Generator.Enabled = true
	cfg.Generator.OutputDir = t.TempDir()
	cfg.Generator.CopyAssets = false
	if mutate != nil {
		mutate(&cfg)
	}

	module, err := New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	return module
}

func writeArticle(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write article %s: %v", name, err)
	}
}
