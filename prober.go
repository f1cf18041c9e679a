package probe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hookkit/probe/internal/reflect"
)

// Prober performs speculative lookups against a host's type graph. Every
// operation returns an Outcome and never panics or returns an error.
// A Prober is safe for concurrent use.
type Prober struct {
	config *config
}

type config struct {
	logger         *slog.Logger
	recorder       Recorder
	directory      *Directory
	loader         Loader
	loaderFactory  LoaderFactory
	observers      []ProbeHook
	packages       PackageQuerier
	settings       SettingsReader
	featureDefault bool
	debugFlags     []string
}

func New(opts ...Option) *Prober {
	cfg := &config{
		logger:         slog.Default(),
		directory:      DefaultDirectory(),
		loader:         DefaultRegistry(),
		loaderFactory:  PluginLoaderFactory,
		featureDefault: true,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.loaderFactory == nil {
		cfg.loaderFactory = PluginLoaderFactory
	}

	return &Prober{config: cfg}
}

func (p *Prober) Loader() Loader {
	return p.config.loader
}

func (p *Prober) ResolveType(name string, loader Loader) Outcome[*Type] {
	return p.ResolveTypeCtx(context.Background(), name, loader)
}

// ResolveTypeCtx resolves name in loader, or in the prober's loader when
// loader is nil. ctx is only handed to the recorder.
func (p *Prober) ResolveTypeCtx(ctx context.Context, name string, loader Loader) Outcome[*Type] {
	start := time.Now()

	t, err := absorb(name, func() (*Type, error) {
		return p.loadType(name, loader)
	})

	p.finish(ctx, Record{Operation: OpResolveType, Type: name}, start, err)
	if err != nil {
		return Absent[*Type](err)
	}
	return Found(t)
}

func (p *Prober) loadType(name string, loader Loader) (*Type, error) {
	if loader == nil || reflect.IsNil(loader) {
		loader = p.config.loader
	}
	if loader == nil || reflect.IsNil(loader) {
		return nil, errTypeNotFound(name, errors.New("no loading context"))
	}

	t, err := loader.LoadType(name)
	if err != nil {
		if CodeOf(err) == ErrCodeTypeNotFound {
			return nil, err
		}
		return nil, errTypeNotFound(name, err)
	}
	if t == nil {
		return nil, errTypeNotFound(name, errors.New("loader returned no type"))
	}
	return t, nil
}

// ResolveTypeOf resolves T by its type key in the prober's loader.
func ResolveTypeOf[T any](p *Prober) Outcome[*Type] {
	return p.ResolveType(reflect.TypeKey[T](), nil)
}

func (p *Prober) ReportHook(typeName, memberName string, err error) {
	p.ReportHookCtx(context.Background(), typeName, memberName, err)
}

// ReportHookCtx records the outcome of installing a hook on typeName#memberName.
func (p *Prober) ReportHookCtx(ctx context.Context, typeName, memberName string, err error) {
	p.finish(ctx, Record{Operation: OpHookInstall, Type: typeName, Member: memberName}, time.Now(), err)
}

func (p *Prober) finish(ctx context.Context, rec Record, start time.Time, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	rec.Time = time.Now()
	rec.Duration = rec.Time.Sub(start)
	rec.Success = err == nil
	if err != nil {
		rec.Cause = err
		rec.Code = CodeOf(err)
		rec.Error = err.Error()
		rec.Stack = StackOf(err)
	}
	rec.Env = CaptureSnapshot()

	p.emit(ctx, rec)

	target := rec.Target()
	for _, hook := range p.config.observers {
		_, _ = absorb(target, func() (struct{}, error) {
			hook(rec.Operation, target, rec.Duration, err)
			return struct{}{}, nil
		})
	}
}

func (p *Prober) emit(ctx context.Context, rec Record) {
	_, err := absorb(RecorderKey, func() (struct{}, error) {
		r, err := p.recorder()
		if err != nil {
			return struct{}{}, err
		}
		if r == nil {
			return struct{}{}, errRecorderUnavailable(nil)
		}
		return struct{}{}, r.Record(ctx, rec)
	})
	if err != nil {
		p.fallback(ctx, rec, err)
	}
}

func (p *Prober) recorder() (Recorder, error) {
	if r := p.config.recorder; r != nil && !reflect.IsNil(r) {
		return r, nil
	}
	if p.config.directory == nil {
		return nil, nil
	}
	return p.config.directory.recorder()
}

// fallback writes a local log line when no recorder took the record.
func (p *Prober) fallback(ctx context.Context, rec Record, recorderErr error) {
	_, _ = absorb("fallback", func() (struct{}, error) {
		attrs := recordAttrs(rec)
		level := slog.LevelDebug
		if !rec.Success {
			level = slog.LevelWarn
		}
		missing := CodeOf(recorderErr) == ErrCodeRecorderUnavailable && errors.Unwrap(recorderErr) == nil
		if recorderErr != nil && !missing {
			attrs = append(attrs, slog.String("recorder_error", recorderErr.Error()))
		}
		p.config.logger.LogAttrs(ctx, level, rec.Operation.String()+" "+rec.Target(), attrs...)
		return struct{}{}, nil
	})
}
