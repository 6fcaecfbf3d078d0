// Package markdown loads blog articles from disk: front matter extraction,
// file discovery over fs.FS, and goldmark-backed HTML rendering.
package markdown
