package registry

import (
	"fmt"
	"sort"
	"sync"
)

type ProviderFunc func() (any, error)

type Entry struct {
	Key          string
	Provider     ProviderFunc
	Instance     any
	Instantiated bool
}

// Registry is a keyed set of values that may be produced lazily. A provider
// runs at most once successfully; failed attempts are retried on the next Get.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	initMu   sync.Mutex
	initKeys map[string]*sync.Mutex
}

func New() *Registry {
	return &Registry{
		entries:  make(map[string]*Entry),
		initKeys: make(map[string]*sync.Mutex),
	}
}

func (r *Registry) Register(key string, provider ProviderFunc) error {
	if provider == nil {
		return fmt.Errorf("nil provider for %s", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("already registered: %s", key)
	}

	r.entries[key] = &Entry{
		Key:      key,
		Provider: provider,
	}
	return nil
}

func (r *Registry) RegisterValue(key string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("already registered: %s", key)
	}

	r.entries[key] = &Entry{
		Key:          key,
		Instance:     value,
		Instantiated: true,
	}
	return nil
}

// Replace registers value under key, discarding any previous entry.
func (r *Registry) Replace(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = &Entry{
		Key:          key,
		Instance:     value,
		Instantiated: true,
	}
}

func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.entries[key]
	return exists
}

// Get returns the value for key, running its provider if needed. found is
// false only when nothing is registered under key.
func (r *Registry) Get(key string) (value any, found bool, err error) {
	r.mu.RLock()
	entry, exists := r.entries[key]
	if exists && entry.Instantiated {
		instance := entry.Instance
		r.mu.RUnlock()
		return instance, true, nil
	}
	r.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	lock := r.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	entry, exists = r.entries[key]
	if !exists {
		r.mu.RUnlock()
		return nil, false, nil
	}
	if entry.Instantiated {
		instance := entry.Instance
		r.mu.RUnlock()
		return instance, true, nil
	}
	provider := entry.Provider
	r.mu.RUnlock()

	instance, err := provider()
	if err != nil {
		return nil, true, fmt.Errorf("provider failed for %s: %w", key, err)
	}

	r.mu.Lock()
	if current, ok := r.entries[key]; ok && current == entry {
		entry.Instance = instance
		entry.Instantiated = true
	}
	r.mu.Unlock()

	return instance, true, nil
}

func (r *Registry) keyLock(key string) *sync.Mutex {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	lock, ok := r.initKeys[key]
	if !ok {
		lock = &sync.Mutex{}
		r.initKeys[key] = lock
	}
	return lock
}

func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, key)
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string]*Entry)
}
