package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps file extensions to normalisers.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string][]driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byExt: make(map[string][]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser under each of its extensions.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.Extensions() {
		ext = strings.ToLower(ext)
		list := append(r.byExt[ext], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byExt[ext] = list
	}
}

// Supports reports whether name has a registered extension.
func (r *Registry) Supports(name string) bool {
	return r.lookup(name) != nil
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Normalise runs the preferred normaliser for name.
func (r *Registry) Normalise(ctx context.Context, name string, data []byte) (*driven.NormaliseResult, error) {
	n := r.lookup(name)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(name))
	}
	result, err := n.Normalise(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("normalising %s: %w", filepath.Base(name), err)
	}
	if strings.TrimSpace(result.Title) == "" {
		result.Title = TitleFromName(name)
	}
	return result, nil
}

func (r *Registry) lookup(name string) driven.Normaliser {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if list := r.byExt[ext]; len(list) > 0 {
		return list[0]
	}
	return nil
}

// TitleFromName turns "master_services-agreement.txt" into
// "master services agreement".
func TitleFromName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}
