// Package probe provides failure-tolerant reflection for code that hooks into
// a host program it does not control.
//
// Every operation is a probe: it either finds what it was asked for or
// reports it absent. Nothing panics and nothing returns an error. Missing
// types, renamed members, panicking callees and broken loaders all end up as
// an Absent outcome carrying the cause, plus a diagnostic record.
//
// # Quick Start
//
// Define the types the host exposes and probe them:
//
//	reg := probe.NewRegistry("host", nil)
//	probe.Define[*Display](reg, probe.Func("NewDisplay", NewDisplay))
//
//	p := probe.New(probe.WithLoader(reg))
//
//	t := p.ResolveType(probe.TypeKey[*Display](), nil)
//	if !t.Present() {
//	    return // degraded mode
//	}
//
//	m := p.ResolveMember(t.Value(), "Resize", reflect.TypeOf(0), reflect.TypeOf(0))
//	res := p.Invoke(m.Value(), display, 1280, 720)
//
// # Outcomes
//
// Outcome is Found(value) or Absent(cause):
//
//	v, ok := outcome.Get()
//	v := outcome.OrElse(fallback)
//	err := outcome.Cause()           // *probe.Error with a code
//
// A call that returns nothing is a success with an empty Result, which is not
// the same as Absent:
//
//	res := p.Invoke(m, recv)
//	res.Present()        // true
//	res.Value().Empty()  // true
//
// Use Call or As to narrow the first result:
//
//	size := probe.Call[int](p, m, recv)
//
// # Members
//
// ResolveMember matches the exact name and parameter types. Exported methods
// and exported statics are tried first. When that fails, unexported statics
// and func-typed struct fields of the same name and signature are used, with
// access overridden; such members report Declared() == true.
//
// # External Code
//
// LoadExternalType checks that the locator exists, builds a loader for it
// (a Go plugin by default) and resolves the type there:
//
//	t := p.LoadExternalType("/data/hooks/display.so", "display.Surface", nil)
//
// # Recording
//
// Each probe produces a Record. The recorder is either pinned with
// WithRecorder or looked up under RecorderKey in a Directory the first time
// it is needed. A missing or failing recorder degrades to a log line:
//
//	probe.DefaultDirectory().ProvideRecorder(probe.NewHistory(100))
//
// Available recorders: History (bounded, in memory), LogRecorder (slog),
// Multi (fan-out), otelrecorder (spans and counters) and journal (msgpack
// file).
//
// # Environment
//
// Host queries use the same absorb pattern:
//
//	v := p.TargetAppVersion("example.com/host")
//	on := p.IsFeatureEnabled("display_enable", true)
//	ok := p.IsFeatureSupported("example.com/host", "1.4.0")
package probe
