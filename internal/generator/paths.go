package generator

import (
	"path"
	"strings"
)

// buildOutputPath maps a site-relative route to its on-disk file. Routes map
// to directory-style output so servers resolve clean URLs without rewrites:
// /posts/my-post becomes posts/my-post/index.html.
func buildOutputPath(route string) string {
	clean := strings.Trim(strings.TrimSpace(route), "/")
	if clean == "" {
		return "index.html"
	}
	return path.Join(clean, "index.html")
}

func joinOutputPath(base string, rel string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimLeft(rel, "/")
	}
	return path.Join(strings.Trim(base, "/"), rel)
}
