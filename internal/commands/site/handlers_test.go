package sitecmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-blog/articles"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

func TestBuildSiteHandlerExecute(t *testing.T) {
	loader := staticLoader(t)

	var capturedOpts generator.BuildOptions
	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, collection *articles.Collection, opts generator.BuildOptions) (*generator.BuildResult, error) {
			capturedOpts = opts
			if collection.Len() != 3 {
				t.Fatalf("expected 3 articles in collection, got %d", collection.Len())
			}
			return &generator.BuildResult{PagesBuilt: 5}, nil
		},
	}

	callbackInvoked := false
	cmd := BuildSiteCommand{
		DryRun: true,
		ResultCallback: func(env BuildResultEnvelope) {
			callbackInvoked = true
			if env.Result == nil || env.Result.PagesBuilt != 5 {
				t.Fatalf("unexpected build result: %#v", env.Result)
			}
			if env.Metadata["operation"] != "build" {
				t.Fatalf("expected operation build, got %v", env.Metadata["operation"])
			}
			if env.Metadata["articles"] != 3 {
				t.Fatalf("expected 3 articles in metadata, got %v", env.Metadata["articles"])
			}
		},
	}

	handler := NewBuildSiteHandler(loader, svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute build: %v", err)
	}
	if !capturedOpts.DryRun {
		t.Fatal("expected DryRun to propagate")
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestBuildSiteHandlerGeneratorDisabled(t *testing.T) {
	handler := NewBuildSiteHandler(staticLoader(t), &fakeGeneratorService{}, nil, FeatureGates{GeneratorEnabled: alwaysFalse})
	err := handler.Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestBuildSiteHandlerLoaderError(t *testing.T) {
	loadErr := errors.New("content dir missing")
	loader := CollectionLoaderFunc(func(context.Context) (*articles.Collection, error) {
		return nil, loadErr
	})

	handler := NewBuildSiteHandler(loader, &fakeGeneratorService{}, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	err := handler.Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestCleanSiteHandlerExecute(t *testing.T) {
	cleanCalled := false
	svc := &fakeGeneratorService{
		cleanFunc: func(ctx context.Context) error {
			cleanCalled = true
			return nil
		},
	}

	handler := NewCleanSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	if err := handler.Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("execute clean: %v", err)
	}
	if !cleanCalled {
		t.Fatal("expected Clean to be called")
	}
}

func TestCleanSiteHandlerGeneratorDisabled(t *testing.T) {
	handler := NewCleanSiteHandler(&fakeGeneratorService{}, nil, FeatureGates{GeneratorEnabled: alwaysFalse})
	err := handler.Execute(context.Background(), CleanSiteCommand{})
	if !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestListArticlesHandlerExecute(t *testing.T) {
	handler := NewListArticlesHandler(staticLoader(t), nil)

	var envelope ArticlesEnvelope
	query := ListArticlesQuery{
		Callback: func(env ArticlesEnvelope) {
			envelope = env
		},
	}

	if err := handler.Execute(context.Background(), query); err != nil {
		t.Fatalf("execute list: %v", err)
	}
	if envelope.Total != 2 {
		t.Fatalf("expected 2 published articles, got %d", envelope.Total)
	}
	if envelope.Articles[0].Slug != "newer-post" {
		t.Fatalf("expected newest first, got %s", envelope.Articles[0].Slug)
	}
}

func TestListArticlesHandlerTagFilter(t *testing.T) {
	handler := NewListArticlesHandler(staticLoader(t), nil)

	var envelope ArticlesEnvelope
	query := ListArticlesQuery{
		Tag: "testing",
		Callback: func(env ArticlesEnvelope) {
			envelope = env
		},
	}

	if err := handler.Execute(context.Background(), query); err != nil {
		t.Fatalf("execute list: %v", err)
	}
	if envelope.Total != 1 {
		t.Fatalf("expected 1 article tagged testing, got %d", envelope.Total)
	}
	if envelope.Articles[0].Slug != "older-post" {
		t.Fatalf("unexpected article: %s", envelope.Articles[0].Slug)
	}
}

func TestListArticlesQueryValidate(t *testing.T) {
	query := ListArticlesQuery{Limit: -1}
	if err := query.Validate(); err == nil {
		t.Fatal("expected validation error for negative limit")
	}
}

func TestShowArticleHandlerIncludesDrafts(t *testing.T) {
	handler := NewShowArticleHandler(staticLoader(t), nil)

	var envelope ArticleEnvelope
	query := ShowArticleQuery{
		Slug: "secret-draft",
		Callback: func(env ArticleEnvelope) {
			envelope = env
		},
	}

	if err := handler.Execute(context.Background(), query); err != nil {
		t.Fatalf("execute show: %v", err)
	}
	if envelope.Article == nil || !envelope.Article.Draft {
		t.Fatalf("expected draft article, got %#v", envelope.Article)
	}
}

func TestShowArticleHandlerNotFound(t *testing.T) {
	handler := NewShowArticleHandler(staticLoader(t), nil)

	err := handler.Execute(context.Background(), ShowArticleQuery{Slug: "missing"})
	if err == nil {
		t.Fatal("expected not found error")
	}
	if !errors.Is(err, articles.ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestShowArticleQueryValidate(t *testing.T) {
	query := ShowArticleQuery{Slug: "  "}
	if err := query.Validate(); err == nil {
		t.Fatal("expected validation error for blank slug")
	}
}

func TestListTagsHandlerExecute(t *testing.T) {
	handler := NewListTagsHandler(staticLoader(t), nil)

	var envelope TagsEnvelope
	query := ListTagsQuery{
		Callback: func(env TagsEnvelope) {
			envelope = env
		},
	}

	if err := handler.Execute(context.Background(), query); err != nil {
		t.Fatalf("execute tags: %v", err)
	}
	if len(envelope.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(envelope.Tags))
	}
	if envelope.Tags[0].Name != "go" || envelope.Tags[0].Count != 2 {
		t.Fatalf("unexpected first tag: %#v", envelope.Tags[0])
	}
}

func staticLoader(t *testing.T) CollectionLoader {
	t.Helper()
	collection, err := articles.Load([]*interfaces.Document{
		testDoc("content/newer.md", "Newer Post", day(2024, time.March, 5), false, "go"),
		testDoc("content/older.md", "Older Post", day(2024, time.January, 10), false, "go", "testing"),
		testDoc("content/draft.md", "Secret Draft", day(2024, time.April, 1), true, "go"),
	})
	if err != nil {
		t.Fatalf("load collection: %v", err)
	}
	return CollectionLoaderFunc(func(context.Context) (*articles.Collection, error) {
		return collection, nil
	})
}

func testDoc(path, title string, date time.Time, draft bool, tags ...string) *interfaces.Document {
	return &interfaces.Document{
		FilePath: path,
		FrontMatter: interfaces.FrontMatter{
			Title: title,
			Date:  date,
			Draft: draft,
			Tags:  tags,
		},
		Body:         []byte("body of " + path),
		BodyHTML:     []byte("<p>body of " + path + "</p>"),
		LastModified: date,
		Checksum:     []byte(path),
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

type fakeGeneratorService struct {
	buildFunc func(context.Context, *articles.Collection, generator.BuildOptions) (*generator.BuildResult, error)
	cleanFunc func(context.Context) error
}

func (f *fakeGeneratorService) Build(ctx context.Context, collection *articles.Collection, opts generator.BuildOptions) (*generator.BuildResult, error) {
	if f.buildFunc != nil {
		return f.buildFunc(ctx, collection, opts)
	}
	return nil, nil
}

func (f *fakeGeneratorService) Clean(ctx context.Context) error {
	if f.cleanFunc != nil {
		return f.cleanFunc(ctx)
	}
	return nil
}

func alwaysTrue() bool  { return true }
func alwaysFalse() bool { return false }
