package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-blog/articles"
	"github.com/goliatone/go-blog/pkg/interfaces"
	urlkit "github.com/goliatone/go-urlkit"
)

func TestBuildWritesSite(t *testing.T) {
	svc, outputDir := newTestService(t, nil)

	result, err := svc.Build(context.Background(), testCollection(t), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Two published articles, home, tag index, two tag pages.
	if result.PagesBuilt != 6 {
		t.Fatalf("expected 6 pages built, got %d", result.PagesBuilt)
	}
	if result.FeedsWritten != 2 {
		t.Fatalf("expected RSS and Atom feeds, got %d", result.FeedsWritten)
	}

	expectFile(t, outputDir, "index.html")
	expectFile(t, outputDir, "posts/older-post/index.html")
	expectFile(t, outputDir, "posts/newer-post/index.html")
	expectFile(t, outputDir, "tags/index.html")
	expectFile(t, outputDir, "tags/go/index.html")
	expectFile(t, outputDir, "tags/testing/index.html")
	expectFile(t, outputDir, "feed.xml")
	expectFile(t, outputDir, "feed.atom.xml")
	expectFile(t, outputDir, "sitemap.xml")
	expectFile(t, outputDir, "robots.txt")
	expectFile(t, outputDir, manifestFileName)

	if _, err := os.Stat(filepath.Join(outputDir, "posts", "secret-draft")); !os.IsNotExist(err) {
		t.Fatal("draft article must not be rendered by default")
	}

	page := readOutput(t, outputDir, "posts/newer-post/index.html")
	if !strings.Contains(page, "Newer Post") {
		t.Fatalf("expected article title in page, got %q", page)
	}
	if !strings.Contains(page, "<strong>bold</strong>") {
		t.Fatalf("expected rendered body HTML in page, got %q", page)
	}

	index := readOutput(t, outputDir, "index.html")
	if !strings.Contains(index, "/posts/newer-post") {
		t.Fatalf("expected article link on index, got %q", index)
	}
	if strings.Contains(index, "secret-draft") {
		t.Fatal("draft must not appear on the index")
	}

	feed := readOutput(t, outputDir, "feed.xml")
	if !strings.Contains(feed, "https://blog.example.test/posts/newer-post") {
		t.Fatalf("expected absolute article link in feed, got %q", feed)
	}

	sitemap := readOutput(t, outputDir, "sitemap.xml")
	if !strings.Contains(sitemap, "https://blog.example.test/tags/go") {
		t.Fatalf("expected tag page in sitemap, got %q", sitemap)
	}

	robots := readOutput(t, outputDir, "robots.txt")
	if !strings.Contains(robots, "Sitemap: https://blog.example.test/sitemap.xml") {
		t.Fatalf("expected sitemap reference in robots.txt, got %q", robots)
	}
}

func TestBuildIncludesDraftsWhenConfigured(t *testing.T) {
	svc, outputDir := newTestService(t, func(cfg *Config) {
		cfg.IncludeDrafts = true
	})

	if _, err := svc.Build(context.Background(), testCollection(t), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	expectFile(t, outputDir, "posts/secret-draft/index.html")

	// Draft pages render, but never leak into listings or feeds.
	index := readOutput(t, outputDir, "index.html")
	if strings.Contains(index, "secret-draft") {
		t.Fatal("draft must not appear on the index")
	}
	feed := readOutput(t, outputDir, "feed.xml")
	if strings.Contains(feed, "secret-draft") {
		t.Fatal("draft must not appear in feeds")
	}
}

func TestBuildIncrementalSkipsUnchangedPages(t *testing.T) {
	svc, _ := newTestService(t, nil)
	collection := testCollection(t)

	first, err := svc.Build(context.Background(), collection, BuildOptions{})
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if first.PagesSkipped != 0 {
		t.Fatalf("expected no skips on first build, got %d", first.PagesSkipped)
	}

	second, err := svc.Build(context.Background(), collection, BuildOptions{})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if second.PagesBuilt != 0 {
		t.Fatalf("expected all pages skipped on unchanged rebuild, built %d", second.PagesBuilt)
	}
	if second.PagesSkipped != first.PagesBuilt {
		t.Fatalf("expected %d skips, got %d", first.PagesBuilt, second.PagesSkipped)
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	svc, outputDir := newTestService(t, nil)

	result, err := svc.Build(context.Background(), testCollection(t), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt == 0 {
		t.Fatal("expected pages to render during dry run")
	}
	if len(result.Rendered) == 0 || result.Rendered[0].HTML == "" {
		t.Fatal("expected rendered HTML in dry run result")
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run must write nothing, found %d entries", len(entries))
	}
}

func TestBuildCopiesAssets(t *testing.T) {
	assets := fstest.MapFS{
		"site.css":     {Data: []byte("body { margin: 0 }")},
		"img/logo.svg": {Data: []byte("<svg/>")},
	}
	svc, outputDir := newTestService(t, func(cfg *Config) {
		cfg.CopyAssets = true
	})
	svc.(*service).deps.Assets = assets

	result, err := svc.Build(context.Background(), testCollection(t), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.AssetsBuilt != 2 {
		t.Fatalf("expected 2 assets copied, got %d", result.AssetsBuilt)
	}
	expectFile(t, outputDir, "assets/site.css")
	expectFile(t, outputDir, "assets/img/logo.svg")

	again, err := svc.Build(context.Background(), testCollection(t), BuildOptions{})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if again.AssetsSkipped != 2 {
		t.Fatalf("expected unchanged assets skipped, got %d skipped %d built", again.AssetsSkipped, again.AssetsBuilt)
	}
}

func TestCleanRefusesUnsetOutputDir(t *testing.T) {
	svc := NewService(Config{}, Dependencies{Renderer: newTestRenderer(t), Routes: newTestResolver(t)})
	if err := svc.Clean(context.Background()); err == nil {
		t.Fatal("expected Clean to refuse an unset output directory")
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewDisabledService()
	if _, err := svc.Build(context.Background(), nil, BuildOptions{}); err != ErrServiceDisabled {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestBuildOutputPath(t *testing.T) {
	cases := map[string]string{
		"/":              "index.html",
		"":               "index.html",
		"/posts/my-post": "posts/my-post/index.html",
		"posts/my-post/": "posts/my-post/index.html",
		"/tags":          "tags/index.html",
		"  /tags/go  ":   "tags/go/index.html",
		"/a/b/c":         "a/b/c/index.html",
	}
	for route, want := range cases {
		if got := buildOutputPath(route); got != want {
			t.Fatalf("buildOutputPath(%q) = %q, want %q", route, got, want)
		}
	}
}

func TestURLResolver(t *testing.T) {
	resolver := newTestResolver(t)

	route, err := resolver.ArticlePath("my-post")
	if err != nil {
		t.Fatalf("ArticlePath: %v", err)
	}
	if route != "/posts/my-post" {
		t.Fatalf("expected /posts/my-post, got %q", route)
	}

	route, err = resolver.TagPath("go")
	if err != nil {
		t.Fatalf("TagPath: %v", err)
	}
	if route != "/tags/go" {
		t.Fatalf("expected /tags/go, got %q", route)
	}

	if _, err := resolver.build("missing", nil); err == nil {
		t.Fatal("expected unknown route to error")
	}
}

func newTestService(tb testing.TB, mutate func(*Config)) (Service, string) {
	tb.Helper()

	outputDir := tb.TempDir()
	cfg := Config{
		OutputDir: outputDir,
		BaseURL:   "https://blog.example.test",
		Site: SiteMetadata{
			Title:    "Test Blog",
			Author:   "Tester",
			Language: "en",
		},
		Incremental:     true,
		GenerateSitemap: true,
		GenerateRobots:  true,
		GenerateFeeds:   true,
		FeedLimit:       10,
		Workers:         2,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	svc := NewService(cfg, Dependencies{
		Renderer: newTestRenderer(tb),
		Routes:   newTestResolver(tb),
	})
	return svc, outputDir
}

func newTestRenderer(tb testing.TB) interfaces.TemplateRenderer {
	tb.Helper()
	renderer, err := NewHTMLRenderer("")
	if err != nil {
		tb.Fatalf("NewHTMLRenderer: %v", err)
	}
	return renderer
}

func newTestResolver(tb testing.TB) *URLResolver {
	tb.Helper()
	resolver, err := NewURLResolver(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name: routeGroupName,
				Paths: map[string]string{
					"home":    "/",
					"article": "/posts/:slug",
					"tags":    "/tags",
					"tag":     "/tags/:tag",
				},
			},
		},
	})
	if err != nil {
		tb.Fatalf("NewURLResolver: %v", err)
	}
	return resolver
}

func testCollection(tb testing.TB) *articles.Collection {
	tb.Helper()
	docs := []*interfaces.Document{
		testDoc("posts/newer.md", "Newer Post", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), false, "go"),
		testDoc("posts/older.md", "Older Post", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), false, "go", "testing"),
		testDoc("posts/draft.md", "Secret Draft", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), true, "go"),
	}
	collection, err := articles.Load(docs)
	if err != nil {
		tb.Fatalf("articles.Load: %v", err)
	}
	return collection
}

func testDoc(path, title string, date time.Time, draft bool, tags ...string) *interfaces.Document {
	return &interfaces.Document{
		FilePath: path,
		FrontMatter: interfaces.FrontMatter{
			Title:   title,
			Date:    date,
			Draft:   draft,
			Tags:    tags,
			Summary: "Summary of " + title,
		},
		Body:         []byte("Body of **bold** " + title),
		BodyHTML:     []byte("<p>Body of <strong>bold</strong> " + title + "</p>"),
		LastModified: date,
		Checksum:     []byte(path),
	}
}

func expectFile(tb testing.TB, dir, rel string) {
	tb.Helper()
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
		tb.Fatalf("expected output file %s: %v", rel, err)
	}
}

func readOutput(tb testing.TB, dir, rel string) string {
	tb.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		tb.Fatalf("read output %s: %v", rel, err)
	}
	return string(data)
}
