package probe

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

var (
	ErrPackageNotFound = errors.New("package not found")
	ErrSettingNotFound = errors.New("setting not found")
)

type PackageInfo struct {
	ID          string
	VersionName string
	VersionCode int64
}

// PackageQuerier looks up installed applications. Implementations may fail
// or panic arbitrarily.
type PackageQuerier interface {
	PackageInfo(id string) (PackageInfo, error)
}

// SettingsReader reads integer system settings. A missing setting should be
// reported as ErrSettingNotFound.
type SettingsReader interface {
	Int(name string) (int64, error)
}

// TargetAppVersion returns the version name of an installed application.
func (p *Prober) TargetAppVersion(id string) Outcome[string] {
	info, err := p.packageInfo(id)
	if err != nil {
		return Absent[string](err)
	}
	if info.VersionName == "" {
		return Absent[string](errVersionLookupFailed(id, errors.New("no version name")))
	}
	return Found(info.VersionName)
}

func (p *Prober) AppVersionCode(id string) Outcome[int64] {
	info, err := p.packageInfo(id)
	if err != nil {
		return Absent[int64](err)
	}
	return Found(info.VersionCode)
}

func (p *Prober) packageInfo(id string) (PackageInfo, error) {
	info, err := absorb(id, func() (PackageInfo, error) {
		q := p.config.packages
		if q == nil {
			return PackageInfo{}, errors.New("no package querier")
		}
		return q.PackageInfo(id)
	})
	if err == nil {
		return info, nil
	}

	if errors.Is(err, ErrPackageNotFound) {
		p.config.logger.Debug("package not found", "package", id)
	} else {
		p.config.logger.Warn("failed to get package version", "package", id, "error", err)
	}
	return PackageInfo{}, errVersionLookupFailed(id, err)
}

// IsFeatureEnabled reads flag as an integer setting: 1 is enabled, any other
// stored value is disabled. A missing or unreadable setting yields def.
func (p *Prober) IsFeatureEnabled(flag string, def bool) bool {
	v, err := absorb(flag, func() (int64, error) {
		s := p.config.settings
		if s == nil {
			return 0, ErrSettingNotFound
		}
		return s.Int(flag)
	})
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			p.config.logger.Warn(
				"failed to read setting, using default",
				"setting", flag, "default", def, "error", errSettingReadFailed(flag, err),
			)
		}
		return def
	}
	return v == 1
}

// FeatureEnabled is IsFeatureEnabled with the prober's configured default.
func (p *Prober) FeatureEnabled(flag string) bool {
	return p.IsFeatureEnabled(flag, p.config.featureDefault)
}

// IsFeatureSupported reports whether the installed version of id is at least
// minVersion. Unknown versions are unsupported.
func (p *Prober) IsFeatureSupported(id, minVersion string) bool {
	current, ok := p.TargetAppVersion(id).Get()
	if !ok {
		return false
	}
	return CompareVersions(current, minVersion) >= 0
}

// CompareVersions compares dotted versions part by part. Parts are split on
// '.', '-' and '_'; non-numeric parts count as zero and missing parts are
// zero. The result is negative, zero or positive.
func CompareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	n := max(len(pa), len(pb))
	for i := range n {
		var va, vb int64
		if i < len(pa) {
			va = pa[i]
		}
		if i < len(pb) {
			vb = pb[i]
		}
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
	}
	return 0
}

func versionParts(v string) []int64 {
	fields := strings.FieldsFunc(strings.TrimPrefix(v, "v"), func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})
	parts := make([]int64, len(fields))
	for i, f := range fields {
		if n, err := strconv.ParseInt(f, 10, 64); err == nil {
			parts[i] = n
		}
	}
	return parts
}

// DebugInfo summarises the environment, the versions of ids and the state of
// the flags set with WithDebugFlags, keyed "flag.<name>".
func (p *Prober) DebugInfo(ids ...string) map[string]string {
	s := CaptureSnapshot()
	info := map[string]string{
		"os":       s.OS + "/" + s.Arch,
		"release":  s.Release,
		"machine":  s.Machine,
		"hostname": s.Hostname,
		"go":       s.GoVersion,
		"cpus":     strconv.Itoa(s.NumCPU),
	}
	for _, id := range ids {
		info[id] = p.TargetAppVersion(id).OrElse("not installed")
	}
	for _, flag := range p.config.debugFlags {
		info["flag."+flag] = strconv.FormatBool(p.FeatureEnabled(flag))
	}
	return info
}

// LogDebugInfo writes DebugInfo as one structured log line.
func (p *Prober) LogDebugInfo(ids ...string) {
	info := p.DebugInfo(ids...)
	attrs := make([]any, 0, len(info))
	for k, v := range info {
		attrs = append(attrs, slog.String(k, v))
	}
	p.config.logger.Info("environment info", attrs...)
}
