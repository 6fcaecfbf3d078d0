package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".blog-manifest.json"
	manifestFileVersion = 1
)

// buildManifest records the last successful build so incremental runs can
// skip pages and assets whose inputs have not changed.
type buildManifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generated_at"`
	Pages       map[string]manifestPage  `json:"pages"`
	Assets      map[string]manifestAsset `json:"assets"`
}

type manifestPage struct {
	Route      string    `json:"route"`
	Kind       string    `json:"kind"`
	Output     string    `json:"output"`
	Template   string    `json:"template"`
	Hash       string    `json:"hash"`
	Checksum   string    `json:"checksum"`
	LastMod    time.Time `json:"last_modified"`
	RenderedAt time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Pages:   map[string]manifestPage{},
		Assets:  map[string]manifestAsset{},
	}
}

// manifestFile is the on-disk shape: entries are sorted arrays so manifest
// diffs stay reviewable.
type manifestFile struct {
	Version     int             `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
	Pages       []manifestPage  `json:"pages"`
	Assets      []manifestAsset `json:"assets"`
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	manifest := newBuildManifest()
	manifest.GeneratedAt = file.GeneratedAt
	if file.Version != 0 {
		manifest.Version = file.Version
	}
	for _, entry := range file.Pages {
		manifest.setPage(entry)
	}
	for _, entry := range file.Assets {
		manifest.setAsset(entry)
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	ordered := manifestFile{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
	}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	for _, entry := range m.Pages {
		ordered.Pages = append(ordered.Pages, entry)
	}
	sort.Slice(ordered.Pages, func(i, j int) bool {
		return ordered.Pages[i].Route < ordered.Pages[j].Route
	})
	for _, entry := range m.Assets {
		ordered.Assets = append(ordered.Assets, entry)
	}
	sort.Slice(ordered.Assets, func(i, j int) bool {
		return ordered.Assets[i].Source < ordered.Assets[j].Source
	})
	return json.MarshalIndent(ordered, "", "  ")
}

func pageKey(route string) string {
	return strings.ToLower(strings.TrimSpace(route))
}

func (m *buildManifest) lookupPage(route string) (manifestPage, bool) {
	if m == nil || len(m.Pages) == 0 {
		return manifestPage{}, false
	}
	entry, ok := m.Pages[pageKey(route)]
	return entry, ok
}

func (m *buildManifest) setPage(entry manifestPage) {
	if m == nil {
		return
	}
	if m.Pages == nil {
		m.Pages = map[string]manifestPage{}
	}
	m.Pages[pageKey(entry.Route)] = entry
}

// shouldSkipPage reports whether the route's inputs match the previous build.
func (m *buildManifest) shouldSkipPage(route, hash, output string) bool {
	entry, ok := m.lookupPage(route)
	if !ok {
		return false
	}
	if entry.Hash != hash {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

func (m *buildManifest) lookupAsset(source string) (manifestAsset, bool) {
	if m == nil || len(m.Assets) == 0 {
		return manifestAsset{}, false
	}
	entry, ok := m.Assets[strings.TrimSpace(source)]
	return entry, ok
}

func (m *buildManifest) setAsset(entry manifestAsset) {
	if m == nil {
		return
	}
	if m.Assets == nil {
		m.Assets = map[string]manifestAsset{}
	}
	m.Assets[strings.TrimSpace(entry.Source)] = entry
}

func (m *buildManifest) shouldSkipAsset(source, checksum, output string) bool {
	entry, ok := m.lookupAsset(source)
	if !ok {
		return false
	}
	if entry.Checksum != checksum {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

// prunePages drops manifest entries whose routes were not part of this build,
// so deleted articles do not linger and shadow future incremental runs.
func (m *buildManifest) prunePages(keys map[string]struct{}) {
	if m == nil || len(m.Pages) == 0 {
		return
	}
	for key := range m.Pages {
		if _, ok := keys[key]; !ok {
			delete(m.Pages, key)
		}
	}
}
