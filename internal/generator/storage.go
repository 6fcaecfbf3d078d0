package generator

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type writeCategory string

const (
	categoryPage     writeCategory = "page"
	categoryAsset    writeCategory = "asset"
	categoryFeed     writeCategory = "feed"
	categorySitemap  writeCategory = "sitemap"
	categoryRobots   writeCategory = "robots"
	categoryManifest writeCategory = "manifest"
)

// writeFileRequest describes a file write routed through the artifact writer.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    writeCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// artifactWriter abstracts output specifics so builds can target the local
// filesystem, a dry-run sink, or test doubles.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	RemoveAll(ctx context.Context, path string) error
}

// newFSWriter returns an artifact writer rooted at dir on the local
// filesystem. Paths in requests are relative to that root.
func newFSWriter(dir string) artifactWriter {
	return &fsWriter{root: strings.TrimSpace(dir)}
}

type fsWriter struct {
	root string
}

func (w *fsWriter) resolve(rel string) string {
	rel = strings.TrimLeft(path.Clean(strings.TrimSpace(rel)), "/")
	if w.root == "" {
		return filepath.FromSlash(rel)
	}
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func (w *fsWriter) EnsureDir(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(w.resolve(dir), 0o755)
}

func (w *fsWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	target := w.resolve(req.Path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, req.Content); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (w *fsWriter) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(w.resolve(rel))
}

func (w *fsWriter) RemoveAll(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rel) == "" || rel == "." {
		return errors.New("generator: refusing to remove output root")
	}
	return os.RemoveAll(w.resolve(rel))
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }

func (noopWriter) ReadFile(context.Context, string) ([]byte, error) {
	return nil, os.ErrNotExist
}

func (noopWriter) RemoveAll(context.Context, string) error { return nil }

func detectAssetContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
