package probe

import (
	"fmt"

	"github.com/hookkit/probe/internal/registry"
)

// RecorderKey is the well-known key the prober looks its recorder up under.
const RecorderKey = "probe.recorder"

// Directory holds optional capabilities looked up by key at first use.
// Missing entries are a normal condition.
type Directory struct {
	entries *registry.Registry
}

var defaultDirectory = NewDirectory()

func DefaultDirectory() *Directory {
	return defaultDirectory
}

func NewDirectory() *Directory {
	return &Directory{entries: registry.New()}
}

// Provide registers a capability built on first lookup.
func (d *Directory) Provide(key string, provider func() (any, error)) error {
	return d.entries.Register(key, provider)
}

func (d *Directory) ProvideValue(key string, value any) error {
	return d.entries.RegisterValue(key, value)
}

// Set registers value under key, replacing any previous capability.
func (d *Directory) Set(key string, value any) {
	d.entries.Replace(key, value)
}

func (d *Directory) Remove(key string) {
	d.entries.Remove(key)
}

func (d *Directory) Has(key string) bool {
	return d.entries.Has(key)
}

func (d *Directory) Keys() []string {
	return d.entries.Keys()
}

// Lookup returns the capability under key. ok is false when nothing is
// registered; err is set when a provider failed.
func (d *Directory) Lookup(key string) (value any, ok bool, err error) {
	return d.entries.Get(key)
}

// ProvideRecorder registers r under RecorderKey.
func (d *Directory) ProvideRecorder(r Recorder) {
	d.Set(RecorderKey, r)
}

func (d *Directory) recorder() (Recorder, error) {
	v, ok, err := absorbLookup(d, RecorderKey)
	if err != nil {
		return nil, errRecorderUnavailable(err)
	}
	if !ok || v == nil {
		return nil, nil
	}
	r, isRecorder := v.(Recorder)
	if !isRecorder {
		return nil, errRecorderUnavailable(fmt.Errorf("%s holds %T", RecorderKey, v))
	}
	return r, nil
}

func absorbLookup(d *Directory, key string) (any, bool, error) {
	type result struct {
		v  any
		ok bool
	}
	res, err := absorb(key, func() (result, error) {
		v, ok, err := d.Lookup(key)
		return result{v: v, ok: ok}, err
	})
	return res.v, res.ok, err
}
