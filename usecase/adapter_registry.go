package usecase

import (
	"video-publisher/domain/model"
	"video-publisher/domain/repository"
)

// AdapterRegistry is the static platform-code → adapter table.
type AdapterRegistry struct {
	adapters map[model.Platform]repository.IPlatformAdapter
}

// PlatformInfo describes one configured platform for clients.
type PlatformInfo struct {
	Code            model.Platform `json:"code"`
	Name            string         `json:"name"`
	InteractiveAuth bool           `json:"interactive_auth"`
}

func NewAdapterRegistry(adapters ...repository.IPlatformAdapter) *AdapterRegistry {
	r := &AdapterRegistry{adapters: make(map[model.Platform]repository.IPlatformAdapter, len(adapters))}
	for _, a := range adapters {
		if a != nil {
			r.adapters[a.Platform()] = a
		}
	}
	return r
}

func (r *AdapterRegistry) Get(p model.Platform) (repository.IPlatformAdapter, bool) {
	a, ok := r.adapters[p]
	return a, ok
}

// Deferred returns the adapter when the platform supports interactive authorization.
func (r *AdapterRegistry) Deferred(p model.Platform) (repository.IDeferredAuthAdapter, bool) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, false
	}
	d, ok := a.(repository.IDeferredAuthAdapter)
	return d, ok
}

// Platforms lists configured platforms in display order.
func (r *AdapterRegistry) Platforms() []PlatformInfo {
	out := make([]PlatformInfo, 0, len(r.adapters))
	for _, p := range model.AllPlatforms {
		if _, ok := r.adapters[p]; !ok {
			continue
		}
		_, deferred := r.Deferred(p)
		out = append(out, PlatformInfo{Code: p, Name: p.Name(), InteractiveAuth: deferred})
	}
	return out
}
