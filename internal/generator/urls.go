package generator

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const routeGroupName = "site"

// URLResolver builds site-relative permalinks from the configured route
// table. Patterns like /posts/:slug live in configuration so hosts can move
// to date-based permalinks without touching the generator.
type URLResolver struct {
	group *urlkit.Group
}

// NewURLResolver validates the route config and prepares the site group.
func NewURLResolver(cfg *urlkit.Config) (*URLResolver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("generator: route config is required")
	}
	manager := urlkit.NewRouteManager(cfg)
	group, err := lookupGroup(manager, routeGroupName)
	if err != nil {
		return nil, err
	}
	return &URLResolver{group: group}, nil
}

// ArticlePath returns the site-relative route for an article slug.
func (r *URLResolver) ArticlePath(slug string) (string, error) {
	return r.build("article", map[string]any{"slug": slug})
}

// TagPath returns the site-relative route for a tag page.
func (r *URLResolver) TagPath(tag string) (string, error) {
	return r.build("tag", map[string]any{"tag": tag})
}

// TagIndexPath returns the route for the tag index.
func (r *URLResolver) TagIndexPath() (string, error) {
	return r.build("tags", nil)
}

// HomePath returns the route for the article index.
func (r *URLResolver) HomePath() (string, error) {
	return r.build("home", nil)
}

func (r *URLResolver) build(route string, params map[string]any) (string, error) {
	builder, err := r.safeBuilder(route)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	url, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("generator: build route %q: %w", route, err)
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return url, nil
}

// safeBuilder guards against urlkit panicking on unknown routes.
func (r *URLResolver) safeBuilder(route string) (builder *urlkit.Builder, err error) {
	if r == nil || r.group == nil {
		return nil, fmt.Errorf("generator: route group not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route %q not found: %v", route, rec)
		}
	}()
	builder = r.group.Builder(route)
	return builder, err
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("generator: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}
