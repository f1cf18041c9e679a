package probe_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/hookkit/probe"
)

type packagesFunc func(id string) (probe.PackageInfo, error)

func (f packagesFunc) PackageInfo(id string) (probe.PackageInfo, error) {
	return f(id)
}

type settingsFunc func(name string) (int64, error)

func (f settingsFunc) Int(name string) (int64, error) {
	return f(name)
}

var hostPackages = packagesFunc(func(id string) (probe.PackageInfo, error) {
	switch id {
	case "example.com/host":
		return probe.PackageInfo{ID: id, VersionName: "2.3.1", VersionCode: 2003001}, nil
	case "example.com/unnamed":
		return probe.PackageInfo{ID: id, VersionCode: 5}, nil
	case "example.com/broken":
		return probe.PackageInfo{}, errors.New("package service died")
	case "example.com/crashing":
		panic("binder transaction failed")
	default:
		return probe.PackageInfo{}, probe.ErrPackageNotFound
	}
})

func TestTargetAppVersion(t *testing.T) {
	t.Parallel()

	p := probe.New(probe.WithPackages(hostPackages))

	if v := p.TargetAppVersion("example.com/host"); v.OrElse("") != "2.3.1" {
		t.Errorf("unexpected version %v", v)
	}
	if c := p.AppVersionCode("example.com/host"); c.OrElse(0) != 2003001 {
		t.Errorf("unexpected version code %v", c)
	}

	for _, id := range []string{"example.com/missing", "example.com/broken", "example.com/crashing", "example.com/unnamed"} {
		o := p.TargetAppVersion(id)
		if o.Present() {
			t.Errorf("%s: expected absent version", id)
			continue
		}
		if probe.CodeOf(o.Cause()) != probe.ErrCodeVersionLookupFailed {
			t.Errorf("%s: unexpected cause %v", id, o.Cause())
		}
	}
}

func TestTargetAppVersionLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := probe.New(probe.WithPackages(hostPackages), probe.WithLogger(logger))

	p.TargetAppVersion("example.com/missing")
	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Errorf("not-installed should log at debug, got %q", buf.String())
	}

	buf.Reset()
	p.TargetAppVersion("example.com/broken")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("lookup failure should log at warn, got %q", buf.String())
	}
}

func TestTargetAppVersionWithoutQuerier(t *testing.T) {
	t.Parallel()

	p := probe.New()
	if p.TargetAppVersion("example.com/host").Present() {
		t.Error("expected absent without a package querier")
	}
	if p.IsFeatureSupported("example.com/host", "1.0") {
		t.Error("unknown version must be unsupported")
	}
}

func TestIsFeatureEnabled(t *testing.T) {
	t.Parallel()

	settings := probe.MapSettings{
		"display_on":  1,
		"display_off": 0,
		"display_two": 2,
	}
	p := probe.New(probe.WithSettings(settings))

	tests := []struct {
		flag string
		def  bool
		want bool
	}{
		{"display_on", false, true},
		{"display_off", true, false},
		{"display_two", true, false},
		{"display_missing", true, true},
		{"display_missing", false, false},
	}

	for _, tt := range tests {
		if got := p.IsFeatureEnabled(tt.flag, tt.def); got != tt.want {
			t.Errorf("IsFeatureEnabled(%s, %v) = %v, want %v", tt.flag, tt.def, got, tt.want)
		}
	}
}

func TestIsFeatureEnabledFailsOpen(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	readers := map[string]probe.SettingsReader{
		"erroring": settingsFunc(func(string) (int64, error) {
			return 0, errors.New("permission denied")
		}),
		"panicking": settingsFunc(func(string) (int64, error) {
			panic("settings provider gone")
		}),
	}

	for name, reader := range readers {
		p := probe.New(probe.WithSettings(reader), probe.WithLogger(logger))
		if !p.IsFeatureEnabled("display_enable", true) {
			t.Errorf("%s: expected default true", name)
		}
		if p.IsFeatureEnabled("display_enable", false) {
			t.Errorf("%s: expected default false", name)
		}
	}

	if !strings.Contains(buf.String(), "SETTING_READ_FAILED") {
		t.Errorf("expected warn line with code, got %q", buf.String())
	}
}

func TestFeatureEnabledDefault(t *testing.T) {
	t.Parallel()

	if !probe.New().FeatureEnabled("anything") {
		t.Error("default should be enabled")
	}
	if probe.New(probe.WithFeatureDefault(false)).FeatureEnabled("anything") {
		t.Error("configured default should be disabled")
	}

	p := probe.New(probe.WithFeatureDefault(false), probe.WithSettings(probe.MapSettings{"x": 1}))
	if !p.FeatureEnabled("x") {
		t.Error("stored value should win over the default")
	}
}

func TestEnvSettings(t *testing.T) {
	t.Setenv("PROBE_DISPLAY_ENABLE", "1")
	t.Setenv("PROBE_DISPLAY_BROKEN", "yes")

	s := probe.EnvSettings{Prefix: "PROBE_"}

	if v, err := s.Int("display_enable"); err != nil || v != 1 {
		t.Errorf("Int() = %d, %v", v, err)
	}
	if _, err := s.Int("display_missing"); !errors.Is(err, probe.ErrSettingNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := s.Int("display_broken"); err == nil {
		t.Error("expected parse error")
	}

	p := probe.New(probe.WithSettings(s))
	if !p.IsFeatureEnabled("display_broken", true) || p.IsFeatureEnabled("display_broken", false) {
		t.Error("unparseable setting should fall back to the default")
	}
}

func TestIsFeatureSupported(t *testing.T) {
	t.Parallel()

	p := probe.New(probe.WithPackages(hostPackages))

	if !p.IsFeatureSupported("example.com/host", "2.3") {
		t.Error("2.3.1 should satisfy 2.3")
	}
	if p.IsFeatureSupported("example.com/host", "2.4.0") {
		t.Error("2.3.1 should not satisfy 2.4.0")
	}
}

func TestCompareVersions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.0.0", 0},
		{"v1.2.3", "1.2.3", 0},
		{"1.10", "1.9", 1},
		{"1.2", "1.2.1", -1},
		{"2.0-beta", "2.0", 0},
		{"2.0_1", "2.0.0", 1},
		{"", "0.0.1", -1},
	}

	for _, tt := range tests {
		if got := probe.CompareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDebugInfo(t *testing.T) {
	t.Parallel()

	p := probe.New(probe.WithPackages(hostPackages))
	info := p.DebugInfo("example.com/host", "example.com/missing")

	if info["example.com/host"] != "2.3.1" {
		t.Errorf("unexpected host version %q", info["example.com/host"])
	}
	if info["example.com/missing"] != "not installed" {
		t.Errorf("unexpected missing version %q", info["example.com/missing"])
	}
	if info["os"] == "" || info["go"] == "" {
		t.Errorf("expected environment keys, got %v", info)
	}
	if _, ok := info["flag.display_enable"]; ok {
		t.Error("flags should only be reported when named")
	}
}

func TestDebugInfoFlags(t *testing.T) {
	t.Parallel()

	p := probe.New(
		probe.WithSettings(probe.MapSettings{"display_enable": 1, "display_legacy": 0}),
		probe.WithDebugFlags("display_enable", "display_legacy", "display_missing"),
	)
	info := p.DebugInfo()

	want := map[string]string{
		"flag.display_enable":  "true",
		"flag.display_legacy":  "false",
		"flag.display_missing": "true",
	}
	for k, v := range want {
		if info[k] != v {
			t.Errorf("%s = %q, want %q", k, info[k], v)
		}
	}
}
