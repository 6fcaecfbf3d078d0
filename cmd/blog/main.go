package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-blog/cmd/blog/internal/bootstrap"
	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
)

type buildExecutor interface {
	Execute(ctx context.Context, msg sitecmd.BuildSiteCommand) error
}

type cleanExecutor interface {
	Execute(ctx context.Context, msg sitecmd.CleanSiteCommand) error
}

type listExecutor interface {
	Execute(ctx context.Context, msg sitecmd.ListArticlesQuery) error
}

type showExecutor interface {
	Execute(ctx context.Context, msg sitecmd.ShowArticleQuery) error
}

type tagsExecutor interface {
	Execute(ctx context.Context, msg sitecmd.ListTagsQuery) error
}

type handlerSet struct {
	build buildExecutor
	clean cleanExecutor
	list  listExecutor
	show  showExecutor
	tags  tagsExecutor
}

type moduleOptions = bootstrap.Options

type moduleResources struct {
	handlers handlerSet
}

var moduleBuilder = func(opts moduleOptions) (*moduleResources, error) {
	resources, err := bootstrap.BuildModule(opts)
	if err != nil {
		return nil, err
	}
	return &moduleResources{
		handlers: handlerSet{
			build: resources.Commands.BuildSite,
			clean: resources.Commands.CleanSite,
			list:  resources.Commands.ListArticles,
			show:  resources.Commands.ShowArticle,
			tags:  resources.Commands.ListTags,
		},
	}, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("blog: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand: expected build, clean, list, show, or tags")
	}

	switch args[0] {
	case "build":
		return runBuild(args[1:])
	case "clean":
		return runClean(args[1:])
	case "list":
		return runList(args[1:])
	case "show":
		return runShow(args[1:])
	case "tags":
		return runTags(args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q: expected build, clean, list, show, or tags", args[0])
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	opts := commonFlags(fs)
	drafts := fs.Bool("drafts", false, "Include draft articles in the generated site")
	dryRun := fs.Bool("dry-run", false, "Render everything without writing output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.IncludeDrafts = *drafts

	resources, err := moduleBuilder(*opts)
	if err != nil {
		return err
	}
	if resources.handlers.build == nil {
		return fmt.Errorf("build handler not configured")
	}

	cmd := sitecmd.BuildSiteCommand{
		DryRun: *dryRun,
		ResultCallback: func(env sitecmd.BuildResultEnvelope) {
			if env.Result == nil {
				return
			}
			log.Printf("module=blog operation=build summary pages=%d skipped=%d assets=%d feeds=%d dry_run=%t duration=%s",
				env.Result.PagesBuilt,
				env.Result.PagesSkipped,
				env.Result.AssetsBuilt,
				env.Result.FeedsWritten,
				env.Result.DryRun,
				env.Result.Duration,
			)
		},
	}
	return resources.handlers.build.Execute(context.Background(), cmd)
}

func runClean(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	opts := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := moduleBuilder(*opts)
	if err != nil {
		return err
	}
	if resources.handlers.clean == nil {
		return fmt.Errorf("clean handler not configured")
	}
	if err := resources.handlers.clean.Execute(context.Background(), sitecmd.CleanSiteCommand{}); err != nil {
		return err
	}
	log.Printf("module=blog operation=clean removed output directory")
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	opts := commonFlags(fs)
	tag := fs.String("tag", "", "Only list articles carrying this tag")
	limit := fs.Int("limit", 0, "Maximum number of articles to list (0 lists all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := moduleBuilder(*opts)
	if err != nil {
		return err
	}
	if resources.handlers.list == nil {
		return fmt.Errorf("list handler not configured")
	}

	query := sitecmd.ListArticlesQuery{
		Tag:   *tag,
		Limit: *limit,
		Callback: func(env sitecmd.ArticlesEnvelope) {
			for _, article := range env.Articles {
				fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", article.Date.Format("2006-01-02"), article.Slug, article.Title)
			}
			log.Printf("module=blog operation=list summary articles=%d", env.Total)
		},
	}
	return resources.handlers.list.Execute(context.Background(), query)
}

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	opts := commonFlags(fs)
	slug := fs.String("slug", "", "Slug of the article to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *slug == "" && fs.NArg() > 0 {
		*slug = fs.Arg(0)
	}
	if *slug == "" {
		return fmt.Errorf("show requires a slug: blog show <slug>")
	}

	resources, err := moduleBuilder(*opts)
	if err != nil {
		return err
	}
	if resources.handlers.show == nil {
		return fmt.Errorf("show handler not configured")
	}

	query := sitecmd.ShowArticleQuery{
		Slug: *slug,
		Callback: func(env sitecmd.ArticleEnvelope) {
			if env.Article == nil {
				return
			}
			fmt.Fprintf(os.Stdout, "Title: %s\nSlug: %s\nDate: %s\nDraft: %t\nTags: %v\n\n%s\n",
				env.Article.Title,
				env.Article.Slug,
				env.Article.Date.Format("2006-01-02"),
				env.Article.Draft,
				env.Article.Tags,
				string(env.Article.Body),
			)
		},
	}
	return resources.handlers.show.Execute(context.Background(), query)
}

func runTags(args []string) error {
	fs := flag.NewFlagSet("tags", flag.ContinueOnError)
	opts := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := moduleBuilder(*opts)
	if err != nil {
		return err
	}
	if resources.handlers.tags == nil {
		return fmt.Errorf("tags handler not configured")
	}

	query := sitecmd.ListTagsQuery{
		Callback: func(env sitecmd.TagsEnvelope) {
			for _, tag := range env.Tags {
				fmt.Fprintf(os.Stdout, "%s\t%d\n", tag.Name, tag.Count)
			}
			log.Printf("module=blog operation=tags summary tags=%d", len(env.Tags))
		},
	}
	return resources.handlers.tags.Execute(context.Background(), query)
}

func commonFlags(fs *flag.FlagSet) *moduleOptions {
	opts := &moduleOptions{}
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to the blog config file (defaults to blog.yaml)")
	fs.StringVar(&opts.ContentDir, "content-dir", "", "Override the Markdown content directory")
	fs.StringVar(&opts.OutputDir, "output", "", "Override the generator output directory")
	fs.StringVar(&opts.BaseURL, "base-url", "", "Override the site base URL")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Override the logging level")
	return opts
}
