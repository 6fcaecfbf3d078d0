// Package generator renders a validated article collection into a static
// site: one HTML page per article, listing and tag pages, RSS and Atom
// feeds, a sitemap, and a build manifest that powers incremental rebuilds.
package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-blog/articles"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled  = errors.New("generator: service disabled")
	errRendererRequired = errors.New("generator: template renderer is required")
	errRoutesRequired   = errors.New("generator: url resolver is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, collection *articles.Collection, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	BaseURL         string
	Site            SiteMetadata
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	IncludeDrafts   bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	FeedLimit       int
	Workers         int
	RenderTimeout   time.Duration
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// DryRun renders everything but writes nothing.
	DryRun bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	FeedsWritten  int
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
	DryRun        bool
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Renderer interfaces.TemplateRenderer
	Routes   *URLResolver
	Assets   fs.FS
	Writer   artifactWriter
	Logger   interfaces.Logger
}

// NewService wires a generator with the provided configuration and
// dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return &service{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, collection *articles.Collection, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if s.deps.Routes == nil {
		return nil, errRoutesRequired
	}
	if collection == nil {
		collection = mustEmptyCollection()
	}

	start := time.Now()
	generatedAt := s.now().UTC()

	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}

	siteMeta := s.cfg.Site
	siteMeta.BaseURL = strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/")

	jobs, err := s.collectJobs(collection)
	if err != nil {
		return nil, err
	}

	writer := s.deps.Writer
	if writer == nil {
		writer = newFSWriter(s.cfg.OutputDir)
	}
	if opts.DryRun {
		writer = noopWriter{}
	}

	if s.cfg.CleanBuild && !opts.DryRun {
		if err := s.Clean(ctx); err != nil {
			return nil, err
		}
	}

	result := &BuildResult{
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(jobs)),
	}

	manifest := newBuildManifest()
	if s.cfg.Incremental && !s.cfg.CleanBuild {
		if loaded, err := s.loadManifest(ctx, writer); err != nil {
			result.Errors = append(result.Errors, err)
		} else {
			manifest = loaded
		}
	}

	var (
		mu       sync.Mutex
		rendered = make([]RenderedPage, 0, len(jobs))
		failures []error
		routes   = make(map[string]struct{}, len(jobs))
	)
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		routes[pageKey(outcome.diagnostic.Route)] = struct{}{}
		if outcome.err != nil {
			failures = append(failures, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		rendered = append(rendered, outcome.page)
	}

	s.renderAll(ctx, siteMeta, generatedAt, opts, jobs, manifest, collect)

	if err := ctx.Err(); err != nil {
		failures = append(failures, err)
	}

	if !opts.DryRun && len(failures) == 0 {
		if err := s.persistPages(ctx, writer, rendered); err != nil {
			failures = append(failures, err)
		}

		if s.cfg.CopyAssets {
			summary, err := s.copyAssets(ctx, writer, s.deps.Assets, manifest, generatedAt)
			if err != nil {
				failures = append(failures, err)
			}
			result.AssetsBuilt += summary.Built
			result.AssetsSkipped += summary.Skipped
		}

		if s.cfg.GenerateFeeds {
			count, err := s.writeFeeds(ctx, writer, siteMeta, collection, generatedAt)
			if err != nil {
				failures = append(failures, err)
			}
			result.FeedsWritten += count
		}

		if s.cfg.GenerateSitemap {
			pages := s.mergeRenderedForSitemap(jobs, rendered, manifest)
			if err := s.writeSitemap(ctx, writer, siteMeta, pages, generatedAt); err != nil {
				failures = append(failures, err)
			}
		}

		if s.cfg.GenerateRobots {
			if err := s.writeRobots(ctx, writer, siteMeta, generatedAt); err != nil {
				failures = append(failures, err)
			}
		}

		if len(failures) == 0 {
			manifest.GeneratedAt = generatedAt
			for _, page := range rendered {
				manifest.setPage(manifestPage{
					Route:      page.Route,
					Kind:       string(page.Kind),
					Output:     page.Output,
					Template:   page.Template,
					Hash:       page.Hash,
					Checksum:   page.Checksum,
					LastMod:    page.LastMod,
					RenderedAt: generatedAt,
				})
			}
			manifest.prunePages(routes)
			if err := s.persistManifest(ctx, writer, manifest); err != nil {
				failures = append(failures, err)
			}
		}
	}

	result.Rendered = rendered
	result.Duration = time.Since(start)
	if len(failures) > 0 {
		result.Errors = append(result.Errors, failures...)
		return result, errors.Join(failures...)
	}

	s.deps.Logger.Info("site build complete",
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"assets_built", result.AssetsBuilt,
		"feeds_written", result.FeedsWritten,
		"duration", result.Duration.String(),
		"dry_run", opts.DryRun,
	)
	return result, nil
}

// Clean removes the output directory entirely.
func (s *service) Clean(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := strings.TrimSpace(s.cfg.OutputDir)
	if dir == "" || dir == "." || dir == "/" {
		return errors.New("generator: refusing to clean unset output directory")
	}
	s.deps.Logger.Debug("cleaning output directory", "dir", dir)
	return os.RemoveAll(dir)
}

// collectJobs assembles the full set of output pages for a collection: the
// article pages, the home index, the tag index, and one listing per tag.
func (s *service) collectJobs(collection *articles.Collection) ([]pageJob, error) {
	resolver := s.deps.Routes

	published := collection.ListPublished(articles.ListOptions{})
	publishedRefs, err := s.articleRefs(published)
	if err != nil {
		return nil, err
	}

	var renderable []*articles.Article
	if s.cfg.IncludeDrafts {
		renderable = collection.All()
	} else {
		renderable = published
	}

	jobs := make([]pageJob, 0, len(renderable)+len(collection.Tags())+2)

	for _, article := range renderable {
		route, err := resolver.ArticlePath(article.Slug)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, pageJob{
			Kind:     KindArticle,
			Route:    route,
			Template: string(KindArticle),
			Title:    article.Title,
			Hash:     articleHash(article),
			LastMod:  article.LastModified,
			Article:  article,
		})
	}

	homeRoute, err := resolver.HomePath()
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, pageJob{
		Kind:     KindIndex,
		Route:    homeRoute,
		Template: string(KindIndex),
		Title:    s.cfg.Site.Title,
		Hash:     listingHash("index", published),
		LastMod:  newestDate(published),
		Articles: publishedRefs,
	})

	tagCounts := collection.TagCounts()
	tagRefs := make([]TagRef, 0, len(tagCounts))
	for _, tc := range tagCounts {
		route, err := resolver.TagPath(tc.Name)
		if err != nil {
			return nil, err
		}
		tagRefs = append(tagRefs, TagRef{TagCount: tc, Route: route})
	}

	tagsRoute, err := resolver.TagIndexPath()
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, pageJob{
		Kind:     KindTagIndex,
		Route:    tagsRoute,
		Template: string(KindTagIndex),
		Title:    "Tags",
		Hash:     tagIndexHash(tagCounts),
		LastMod:  newestDate(published),
		Tags:     tagRefs,
	})

	for _, tc := range tagCounts {
		tagged := collection.ListPublished(articles.ListOptions{Tag: tc.Name})
		taggedRefs, err := s.articleRefs(tagged)
		if err != nil {
			return nil, err
		}
		route, err := resolver.TagPath(tc.Name)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, pageJob{
			Kind:     KindTag,
			Route:    route,
			Template: string(KindTag),
			Title:    tc.Name,
			Hash:     listingHash("tag:"+tc.Name, tagged),
			LastMod:  newestDate(tagged),
			Tag:      tc.Name,
			Articles: taggedRefs,
		})
	}

	return jobs, nil
}

func (s *service) articleRefs(list []*articles.Article) ([]ArticleRef, error) {
	refs := make([]ArticleRef, 0, len(list))
	for _, article := range list {
		route, err := s.deps.Routes.ArticlePath(article.Slug)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ArticleRef{Article: article, Route: route})
	}
	return refs, nil
}

func (s *service) renderAll(
	ctx context.Context,
	siteMeta SiteMetadata,
	generatedAt time.Time,
	opts BuildOptions,
	jobs []pageJob,
	manifest *buildManifest,
	collect func(renderOutcome),
) {
	workers := s.effectiveWorkerCount(len(jobs))
	if workers <= 1 || len(jobs) <= 1 {
		for i := range jobs {
			if ctx.Err() != nil {
				return
			}
			collect(s.renderPage(ctx, siteMeta, generatedAt, opts, &jobs[i], manifest))
		}
		return
	}

	queue := make(chan *pageJob)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				if ctx.Err() != nil {
					return
				}
				collect(s.renderPage(ctx, siteMeta, generatedAt, opts, job, manifest))
			}
		}()
	}

	for i := range jobs {
		select {
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			return
		case queue <- &jobs[i]:
		}
	}
	close(queue)
	wg.Wait()
}

func (s *service) renderPage(
	ctx context.Context,
	siteMeta SiteMetadata,
	generatedAt time.Time,
	opts BuildOptions,
	job *pageJob,
	manifest *buildManifest,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			Kind:     job.Kind,
			Route:    job.Route,
			Template: job.Template,
		},
	}

	if err := ctx.Err(); err != nil {
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}

	output := buildOutputPath(job.Route)
	if s.cfg.Incremental && manifest.shouldSkipPage(job.Route, job.Hash, output) {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		return outcome
	}

	templateCtx := TemplateContext{
		Site: siteMeta,
		Page: PageContext{
			Kind:      job.Kind,
			Title:     job.Title,
			Route:     job.Route,
			Permalink: absoluteURL(siteMeta.BaseURL, job.Route),
			Article:   job.Article,
			Articles:  job.Articles,
			Tag:       job.Tag,
			Tags:      job.Tags,
		},
		Build: BuildMetadata{
			GeneratedAt: generatedAt,
			Options:     opts,
		},
		Helpers: newTemplateHelpers(siteMeta.BaseURL),
	}

	start := time.Now()
	html, err := s.deps.Renderer.Render(job.Template, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render template %q for route %s: %w", job.Template, job.Route, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		Kind:     job.Kind,
		Route:    job.Route,
		Output:   output,
		Template: job.Template,
		HTML:     html,
		Hash:     job.Hash,
		LastMod:  job.LastMod,
		Duration: duration,
	}
	return outcome
}

func (s *service) persistPages(ctx context.Context, writer artifactWriter, pages []RenderedPage) error {
	for i := range pages {
		checksum := computeHashFromString(pages[i].HTML)
		pages[i].Checksum = checksum
		req := writeFileRequest{
			Path:        pages[i].Output,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    checksum,
			Metadata: map[string]string{
				"route":    pages[i].Route,
				"template": pages[i].Template,
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) writeFeeds(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	collection *articles.Collection,
	generatedAt time.Time,
) (int, error) {
	items, err := s.feedItemsFor(collection, s.deps.Routes)
	if err != nil {
		return 0, err
	}

	total := 0
	rssContent := buildRSSFeed(siteMeta, items, generatedAt)
	if err := writer.WriteFile(ctx, writeFileRequest{
		Path:        "feed.xml",
		Content:     strings.NewReader(rssContent),
		Size:        int64(len(rssContent)),
		Category:    categoryFeed,
		ContentType: "application/rss+xml",
		Checksum:    computeHashFromString(rssContent),
		Metadata:    map[string]string{"feed_type": "rss"},
	}); err != nil {
		return total, err
	}
	total++

	atomContent := buildAtomFeed(siteMeta, items, generatedAt)
	if err := writer.WriteFile(ctx, writeFileRequest{
		Path:        "feed.atom.xml",
		Content:     strings.NewReader(atomContent),
		Size:        int64(len(atomContent)),
		Category:    categoryFeed,
		ContentType: "application/atom+xml",
		Checksum:    computeHashFromString(atomContent),
		Metadata:    map[string]string{"feed_type": "atom"},
	}); err != nil {
		return total, err
	}
	total++
	return total, nil
}

// mergeRenderedForSitemap combines freshly rendered pages with manifest
// entries for pages skipped by the incremental check, so the sitemap always
// covers the full site.
func (s *service) mergeRenderedForSitemap(jobs []pageJob, rendered []RenderedPage, manifest *buildManifest) []RenderedPage {
	renderedByRoute := make(map[string]RenderedPage, len(rendered))
	for _, page := range rendered {
		renderedByRoute[pageKey(page.Route)] = page
	}

	pages := make([]RenderedPage, 0, len(jobs))
	for i := range jobs {
		key := pageKey(jobs[i].Route)
		if page, ok := renderedByRoute[key]; ok {
			pages = append(pages, page)
			continue
		}
		if entry, ok := manifest.lookupPage(jobs[i].Route); ok {
			pages = append(pages, RenderedPage{
				Kind:     PageKind(entry.Kind),
				Route:    entry.Route,
				Output:   entry.Output,
				Template: entry.Template,
				Hash:     entry.Hash,
				Checksum: entry.Checksum,
				LastMod:  entry.LastMod,
			})
			continue
		}
		pages = append(pages, RenderedPage{
			Kind:     jobs[i].Kind,
			Route:    jobs[i].Route,
			Template: jobs[i].Template,
			Hash:     jobs[i].Hash,
			LastMod:  jobs[i].LastMod,
		})
	}
	return pages
}

func (s *service) writeSitemap(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	pages []RenderedPage,
	generatedAt time.Time,
) error {
	content := buildSitemap(siteMeta.BaseURL, pages, generatedAt)
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        "sitemap.xml",
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": generatedAt.Format(time.RFC3339),
		},
	})
}

func (s *service) writeRobots(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	generatedAt time.Time,
) error {
	content := buildRobots(siteMeta.BaseURL, s.cfg.GenerateSitemap)
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        "robots.txt",
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": generatedAt.Format(time.RFC3339),
		},
	})
}

func (s *service) loadManifest(ctx context.Context, writer artifactWriter) (*buildManifest, error) {
	data, err := writer.ReadFile(ctx, manifestFileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newBuildManifest(), nil
		}
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        manifestFileName,
		Content:     strings.NewReader(string(data)),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
	})
}

func (s *service) effectiveWorkerCount(jobCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobCount > 0 && workers > jobCount {
		return jobCount
	}
	return workers
}

func articleHash(article *articles.Article) string {
	h := sha256.New()
	h.Write([]byte(article.Slug))
	h.Write([]byte{0})
	h.Write(article.Checksum)
	return hex.EncodeToString(h.Sum(nil))
}

// listingHash digests the identity and content of every member so a listing
// re-renders whenever any of its articles change.
func listingHash(name string, list []*articles.Article) string {
	h := sha256.New()
	h.Write([]byte(name))
	for _, article := range list {
		h.Write([]byte{0})
		h.Write([]byte(article.Slug))
		h.Write(article.Checksum)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func tagIndexHash(tags []articles.TagCount) string {
	h := sha256.New()
	h.Write([]byte("tags"))
	for _, tc := range tags {
		fmt.Fprintf(h, "%c%s:%d", 0, tc.Name, tc.Count)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func newestDate(list []*articles.Article) time.Time {
	var newest time.Time
	for _, article := range list {
		ts := article.LastModified
		if ts.IsZero() {
			ts = article.Date
		}
		if ts.After(newest) {
			newest = ts
		}
	}
	return newest
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func mustEmptyCollection() *articles.Collection {
	collection, err := articles.Load(nil)
	if err != nil {
		panic(err)
	}
	return collection
}

func (disabledService) Build(context.Context, *articles.Collection, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
