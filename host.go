package probe

import (
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
)

// BuildInfoPackages answers package queries from the modules linked into the
// running binary. The module path is the package id; the version code packs
// major, minor and patch as major*1e6 + minor*1e3 + patch.
type BuildInfoPackages struct {
	once    sync.Once
	modules map[string]string
}

func (b *BuildInfoPackages) PackageInfo(id string) (PackageInfo, error) {
	b.once.Do(b.load)

	version, ok := b.modules[id]
	if !ok {
		return PackageInfo{}, ErrPackageNotFound
	}
	return PackageInfo{
		ID:          id,
		VersionName: version,
		VersionCode: versionCode(version),
	}, nil
}

func (b *BuildInfoPackages) load() {
	b.modules = make(map[string]string)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	b.modules[info.Main.Path] = info.Main.Version
	for _, dep := range info.Deps {
		if dep.Replace != nil {
			b.modules[dep.Path] = dep.Replace.Version
			continue
		}
		b.modules[dep.Path] = dep.Version
	}
}

func versionCode(version string) int64 {
	parts := versionParts(version)
	var code int64
	for i, scale := range []int64{1_000_000, 1_000, 1} {
		if i < len(parts) {
			code += parts[i] * scale
		}
	}
	return code
}

// MapSettings is an in-memory SettingsReader.
type MapSettings map[string]int64

func (m MapSettings) Int(name string) (int64, error) {
	v, ok := m[name]
	if !ok {
		return 0, ErrSettingNotFound
	}
	return v, nil
}

// EnvSettings reads settings from environment variables named Prefix plus
// the upper-cased setting name.
type EnvSettings struct {
	Prefix string
}

func (e EnvSettings) Int(name string) (int64, error) {
	raw, ok := os.LookupEnv(e.Prefix + strings.ToUpper(name))
	if !ok {
		return 0, ErrSettingNotFound
	}
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}
