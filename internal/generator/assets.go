package generator

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"time"
)

type assetCopySummary struct {
	Built   int
	Skipped int
}

// copyAssets mirrors the static assets tree into the output under assets/.
// Unchanged files are skipped on incremental builds using manifest checksums.
func (s *service) copyAssets(
	ctx context.Context,
	writer artifactWriter,
	assets fs.FS,
	manifest *buildManifest,
	copiedAt time.Time,
) (assetCopySummary, error) {
	summary := assetCopySummary{}
	if assets == nil {
		return summary, nil
	}

	var sources []string
	err := fs.WalkDir(assets, ".", func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			if entry == "." && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		sources = append(sources, entry)
		return nil
	})
	if err != nil {
		return summary, err
	}
	sort.Strings(sources)

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		data, err := fs.ReadFile(assets, source)
		if err != nil {
			return summary, err
		}
		destRel := path.Join("assets", source)
		checksum := computeHash(data)
		if s.cfg.Incremental && manifest.shouldSkipAsset(source, checksum, destRel) {
			summary.Skipped++
			continue
		}
		req := writeFileRequest{
			Path:        destRel,
			Content:     bytes.NewReader(data),
			Size:        int64(len(data)),
			Category:    categoryAsset,
			ContentType: detectAssetContentType(destRel),
			Checksum:    checksum,
			Metadata:    map[string]string{"asset": source},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return summary, err
		}
		summary.Built++
		manifest.setAsset(manifestAsset{
			Source:   source,
			Output:   destRel,
			Checksum: checksum,
			Size:     int64(len(data)),
			CopiedAt: copiedAt,
		})
	}
	return summary, nil
}
