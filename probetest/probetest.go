package probetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/hookkit/probe"
	"github.com/hookkit/probe/internal/reflect"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

// TestProber is a prober with an isolated registry and directory and a
// capturing recorder.
type TestProber struct {
	*probe.Prober
	Registry  *probe.Registry
	Directory *probe.Directory
	Capture   *Capture
	tb        TB
}

// New builds a TestProber. Extra options are applied after the defaults, so
// WithRecorder or WithLoader override them.
func New(tb TB, opts ...probe.Option) *TestProber {
	tb.Helper()

	reg := probe.NewRegistry("test", nil)
	dir := probe.NewDirectory()
	capture := &Capture{}
	dir.ProvideRecorder(capture)

	base := []probe.Option{
		probe.WithLoader(reg),
		probe.WithDirectory(dir),
	}

	tp := &TestProber{
		Prober:    probe.New(append(base, opts...)...),
		Registry:  reg,
		Directory: dir,
		Capture:   capture,
		tb:        tb,
	}

	tb.Cleanup(capture.Reset)
	return tp
}

func Define[T any](tp *TestProber, statics ...probe.Static) {
	tp.tb.Helper()

	if err := probe.Define[T](tp.Registry, statics...); err != nil {
		tp.tb.Fatalf("failed to define %s: %v", reflect.TypeKey[T](), err)
	}
}

func DefineNamed[T any](tp *TestProber, name string, statics ...probe.Static) {
	tp.tb.Helper()

	if err := probe.DefineNamed[T](tp.Registry, name, statics...); err != nil {
		tp.tb.Fatalf("failed to define %s: %v", name, err)
	}
}

func RequireFound[T any](tb TB, o probe.Outcome[T]) T {
	tb.Helper()

	v, ok := o.Get()
	if !ok {
		tb.Fatalf("expected Found, got %v", o)
	}
	return v
}

func RequireAbsent[T any](tb TB, o probe.Outcome[T]) error {
	tb.Helper()

	if o.Present() {
		tb.Fatalf("expected Absent, got Found(%v)", o.Value())
	}
	return o.Cause()
}

func RequireCode[T any](tb TB, o probe.Outcome[T], code probe.ErrorCode) {
	tb.Helper()

	err := RequireAbsent(tb, o)
	if got := probe.CodeOf(err); got != code {
		tb.Fatalf("expected code %s, got %s (%v)", code, got, err)
	}
}

// Capture is a Recorder that keeps every record.
type Capture struct {
	mu      sync.Mutex
	records []probe.Record
}

func (c *Capture) Record(_ context.Context, rec probe.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

func (c *Capture) Records() []probe.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]probe.Record, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Capture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Last returns the most recent record, or a zero Record.
func (c *Capture) Last() probe.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.records) == 0 {
		return probe.Record{}
	}
	return c.records[len(c.records)-1]
}

func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
}

var ErrRecorderBroken = errors.New("recorder broken")

// FailingRecorder returns ErrRecorderBroken for every record.
type FailingRecorder struct {
	calls atomic.Int64
}

func (f *FailingRecorder) Record(context.Context, probe.Record) error {
	f.calls.Add(1)
	return ErrRecorderBroken
}

func (f *FailingRecorder) Calls() int64 {
	return f.calls.Load()
}

// PanickingRecorder panics on every record.
type PanickingRecorder struct{}

func (PanickingRecorder) Record(context.Context, probe.Record) error {
	panic("recorder exploded")
}

// CountingFactory wraps a LoaderFactory and counts how often it runs.
type CountingFactory struct {
	Next  probe.LoaderFactory
	calls atomic.Int64
}

func (c *CountingFactory) Factory() probe.LoaderFactory {
	return func(locator string, parent probe.Loader) (probe.Loader, error) {
		c.calls.Add(1)
		if c.Next == nil {
			return nil, errors.New("no loader")
		}
		return c.Next(locator, parent)
	}
}

func (c *CountingFactory) Calls() int64 {
	return c.calls.Load()
}

// StaticLoaderFactory returns a factory that always hands out loader.
func StaticLoaderFactory(loader probe.Loader) probe.LoaderFactory {
	return func(string, probe.Loader) (probe.Loader, error) {
		return loader, nil
	}
}
