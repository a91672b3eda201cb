// Package pins tracks which snippets are currently materialized as pinned
// always-on-top surfaces. The registry is a pure in-memory reference table —
// surface id to snippet id — and never caches snippet content, so a pinned
// view can never render stale data after an edit.
package pins

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Registry maps opaque surface ids to snippet ids for the process lifetime.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[string]string // surface id → snippet id
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{surfaces: make(map[string]string)}
}

// Pin allocates a fresh opaque surface id for the snippet and returns it.
// Pinning the same snippet twice yields two independent surfaces.
func (r *Registry) Pin(snippetID string) string {
	surfaceID := uuid.NewString()
	r.mu.Lock()
	r.surfaces[surfaceID] = snippetID
	total := len(r.surfaces)
	r.mu.Unlock()

	slog.Debug("surface pinned", "surface", surfaceID, "snippet", snippetID, "total", total)
	return surfaceID
}

// Unpin removes a surface. Unknown surface ids are a no-op.
func (r *Registry) Unpin(surfaceID string) {
	r.mu.Lock()
	_, ok := r.surfaces[surfaceID]
	delete(r.surfaces, surfaceID)
	r.mu.Unlock()

	if ok {
		slog.Debug("surface unpinned", "surface", surfaceID)
	}
}

// Resolve returns the snippet id a surface references. The view layer calls
// this every render and fetches content live from the store.
func (r *Registry) Resolve(surfaceID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.surfaces[surfaceID]
	return id, ok
}

// OnSnippetDeleted unpins every surface referencing the deleted snippet,
// so no surface can dangle. Wired as the store's delete hook.
func (r *Registry) OnSnippetDeleted(snippetID string) {
	r.mu.Lock()
	var removed []string
	for surface, snip := range r.surfaces {
		if snip == snippetID {
			removed = append(removed, surface)
			delete(r.surfaces, surface)
		}
	}
	r.mu.Unlock()

	for _, surface := range removed {
		slog.Debug("surface invalidated", "surface", surface, "snippet", snippetID)
	}
}

// Surfaces returns a snapshot of the current surface → snippet mapping.
func (r *Registry) Surfaces() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.surfaces))
	for surface, snip := range r.surfaces {
		out[surface] = snip
	}
	return out
}
