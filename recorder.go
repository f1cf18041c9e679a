package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type Operation uint8

const (
	OpResolveType Operation = iota + 1
	OpResolveMember
	OpInvoke
	OpLoadExternalType
	OpHookInstall
)

var operationNames = map[Operation]string{
	OpResolveType:      "resolve-type",
	OpResolveMember:    "resolve-member",
	OpInvoke:           "invoke",
	OpLoadExternalType: "load-external-type",
	OpHookInstall:      "hook-install",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", o)
}

// Record describes one probe attempt.
type Record struct {
	Time      time.Time     `msgpack:"time"`
	Duration  time.Duration `msgpack:"duration"`
	Operation Operation     `msgpack:"op"`
	Type      string        `msgpack:"type,omitempty"`
	Member    string        `msgpack:"member,omitempty"`
	Signature string        `msgpack:"signature,omitempty"`
	Locator   string        `msgpack:"locator,omitempty"`
	Success   bool          `msgpack:"success"`
	// Declared is set when the member was reached through the fallback tier.
	Declared bool      `msgpack:"declared,omitempty"`
	Code     ErrorCode `msgpack:"code,omitempty"`
	Error    string    `msgpack:"error,omitempty"`
	Stack    string    `msgpack:"stack,omitempty"`
	Env      Snapshot  `msgpack:"env"`

	Cause error `msgpack:"-"`
}

// Target renders "Type#Member(sig)" for display.
func (r Record) Target() string {
	s := r.Type
	if r.Member != "" {
		s += "#" + r.Member + r.Signature
	}
	if r.Locator != "" {
		s += " [" + r.Locator + "]"
	}
	return s
}

// Recorder receives every probe record. Implementations may fail or be slow;
// the prober contains their failures.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

type RecorderFunc func(ctx context.Context, rec Record) error

func (f RecorderFunc) Record(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}

type multiRecorder []Recorder

// Multi fans a record out to every recorder and joins their errors.
func Multi(recorders ...Recorder) Recorder {
	var rs multiRecorder
	for _, r := range recorders {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return rs
}

func (m multiRecorder) Record(ctx context.Context, rec Record) error {
	var errs []error
	for _, r := range m {
		_, err := absorb("recorder", func() (struct{}, error) {
			return struct{}{}, r.Record(ctx, rec)
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogRecorder writes records as structured log lines: failures at warn,
// successes at debug.
type LogRecorder struct {
	logger *slog.Logger
}

func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRecorder{logger: logger}
}

func (l *LogRecorder) Record(ctx context.Context, rec Record) error {
	attrs := recordAttrs(rec)
	if rec.Success {
		l.logger.LogAttrs(ctx, slog.LevelDebug, "probe succeeded", attrs...)
		return nil
	}
	l.logger.LogAttrs(ctx, slog.LevelWarn, "probe failed", attrs...)
	return nil
}

func recordAttrs(rec Record) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("op", rec.Operation.String()),
		slog.String("type", rec.Type),
	}
	if rec.Member != "" {
		attrs = append(attrs, slog.String("member", rec.Member+rec.Signature))
	}
	if rec.Locator != "" {
		attrs = append(attrs, slog.String("locator", rec.Locator))
	}
	if rec.Declared {
		attrs = append(attrs, slog.Bool("declared", true))
	}
	if !rec.Success {
		attrs = append(attrs, slog.String("code", rec.Code.String()), slog.String("error", rec.Error))
	}
	attrs = append(attrs,
		slog.Duration("duration", rec.Duration),
		slog.String("os", rec.Env.OS+"/"+rec.Env.Arch),
		slog.String("release", rec.Env.Release),
	)
	return attrs
}
