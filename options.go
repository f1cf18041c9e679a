package probe

import "log/slog"

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithRecorder pins the recorder instead of looking it up in the directory.
func WithRecorder(r Recorder) Option {
	return func(cfg *config) {
		cfg.recorder = r
	}
}

// WithDirectory sets where the recorder is looked up under RecorderKey.
func WithDirectory(d *Directory) Option {
	return func(cfg *config) {
		cfg.directory = d
	}
}

// WithLoader sets the loading context used when callers pass a nil loader.
func WithLoader(l Loader) Option {
	return func(cfg *config) {
		cfg.loader = l
	}
}

func WithLoaderFactory(f LoaderFactory) Option {
	return func(cfg *config) {
		cfg.loaderFactory = f
	}
}

func WithProbeObserver(hook ProbeHook) Option {
	return func(cfg *config) {
		cfg.observers = append(cfg.observers, hook)
	}
}

func WithPackages(q PackageQuerier) Option {
	return func(cfg *config) {
		cfg.packages = q
	}
}

func WithSettings(s SettingsReader) Option {
	return func(cfg *config) {
		cfg.settings = s
	}
}

// WithFeatureDefault sets what FeatureEnabled returns when the flag cannot
// be read. The default is true.
func WithFeatureDefault(enabled bool) Option {
	return func(cfg *config) {
		cfg.featureDefault = enabled
	}
}

// WithDebugFlags names feature flags DebugInfo reports alongside the
// environment.
func WithDebugFlags(flags ...string) Option {
	return func(cfg *config) {
		cfg.debugFlags = append(cfg.debugFlags, flags...)
	}
}
