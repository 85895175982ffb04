package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/alexiusacademia/gohyst/internal/imk"
)

// entry guards one material; instances themselves carry no locks
type entry struct {
	mu   sync.Mutex
	name string
	m    *imk.Material
}

// registry holds the materials created through the API
type registry struct {
	mu    sync.RWMutex
	items map[string]*entry
}

func newRegistry() *registry {
	return &registry{items: make(map[string]*entry)}
}

func (r *registry) add(name string, m *imk.Material) string {
	id := uuid.New().String()
	r.mu.Lock()
	r.items[id] = &entry{name: name, m: m}
	r.mu.Unlock()
	return id
}

func (r *registry) get(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	return e, ok
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	return true
}

// with runs fn on the material id while holding its lock
func (r *registry) with(id string, fn func(e *entry) error) (bool, error) {
	e, ok := r.get(id)
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return true, fn(e)
}
