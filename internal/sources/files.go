package sources

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/gravitrone/mentionly/internal/mention"
)

const (
	defaultFileLimit = 20
	maxIndexedFiles  = 5000
)

var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
}

// FileIndex lists files under a root once and ranks them fuzzily per query.
type FileIndex struct {
	root  string
	limit int

	mu     sync.Mutex
	paths  []string
	loaded bool
}

// NewFileIndex creates an index rooted at root ("." when empty).
func NewFileIndex(root string, limit int) *FileIndex {
	if root == "" {
		root = "."
	}
	if limit <= 0 {
		limit = defaultFileLimit
	}
	return &FileIndex{root: root, limit: limit}
}

// Search returns the best matching files for query. It has the FuncSource shape.
func (x *FileIndex) Search(ctx context.Context, query string) ([]mention.Item, error) {
	paths, err := x.load(ctx)
	if err != nil {
		return nil, err
	}

	var picked []string
	if query == "" {
		picked = paths
	} else {
		matches := fuzzy.RankFindFold(query, paths)
		sort.Stable(matches)
		picked = make([]string, 0, len(matches))
		for _, m := range matches {
			picked = append(picked, m.Target)
		}
	}
	if len(picked) > x.limit {
		picked = picked[:x.limit]
	}

	items := make([]mention.Item, 0, len(picked))
	for _, p := range picked {
		items = append(items, mention.Item{
			ID:    p,
			Label: p,
			Extra: map[string]any{
				"name": path.Base(p),
				"dir":  path.Dir(p),
			},
		})
	}
	return items, nil
}

// Refresh drops the cached listing.
func (x *FileIndex) Refresh() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.paths = nil
	x.loaded = false
}

func (x *FileIndex) load(ctx context.Context) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.loaded {
		return x.paths, nil
	}

	var paths []string
	err := filepath.WalkDir(x.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == x.root || !os.IsPermission(err) {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != x.root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(x.root, p)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, filepath.ToSlash(rel))
		if len(paths) >= maxIndexedFiles {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	x.paths = paths
	x.loaded = true
	return paths, nil
}
