package generator

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/goliatone/go-blog/articles"
)

const defaultFeedLimit = 100

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	Author      string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// feedItemsFor converts the newest published articles into feed items.
// Articles arrive already ordered newest first, so the feed keeps that order.
func (s *service) feedItemsFor(collection *articles.Collection, resolver *URLResolver) ([]feedItem, error) {
	limit := s.cfg.FeedLimit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	published := collection.ListPublished(articles.ListOptions{Limit: limit})

	items := make([]feedItem, 0, len(published))
	for _, article := range published {
		route, err := resolver.ArticlePath(article.Slug)
		if err != nil {
			return nil, err
		}
		updated := article.LastModified
		if updated.IsZero() {
			updated = article.Date
		}
		items = append(items, feedItem{
			Title:       article.Title,
			Summary:     normalizeWhitespace(article.Summary),
			Link:        absoluteURL(s.cfg.BaseURL, route),
			GUID:        article.ID.String(),
			Author:      article.Author,
			PublishedAt: article.Date,
			UpdatedAt:   updated,
		})
	}
	return items, nil
}

func buildRSSFeed(site SiteMetadata, items []feedItem, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(site.Title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(feedDescription(site))))
	if lang := strings.TrimSpace(site.Language); lang != "" {
		builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(lang)))
	}
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf(`      <guid isPermaLink="false">%s</guid>`+"\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func buildAtomFeed(site SiteMetadata, items []feedItem, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)
	feedID := baseLink + "/feed.atom.xml"

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if lang := strings.TrimSpace(site.Language); lang != "" {
		builder.WriteString(fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", escapeXML(lang)))
	} else {
		builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	}
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(site.Title)))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", generatedAt.UTC().Format(time.RFC3339)))
	if author := strings.TrimSpace(site.Author); author != "" {
		builder.WriteString("  <author>\n")
		builder.WriteString(fmt.Sprintf("    <name>%s</name>\n", escapeXML(author)))
		builder.WriteString("  </author>\n")
	}
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXML(feedID)))
	for _, item := range items {
		updated := item.UpdatedAt
		if updated.IsZero() {
			updated = item.PublishedAt
		}
		if updated.IsZero() {
			updated = generatedAt
		}
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>urn:uuid:%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		}
		if author := strings.TrimSpace(item.Author); author != "" {
			builder.WriteString("    <author>\n")
			builder.WriteString(fmt.Sprintf("      <name>%s</name>\n", escapeXML(author)))
			builder.WriteString("    </author>\n")
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func feedDescription(site SiteMetadata) string {
	if desc := strings.TrimSpace(site.Description); desc != "" {
		return desc
	}
	return "Latest articles"
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return targetBase
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}
