package main

import (
	"maps"
	"runtime/debug"
	"slices"

	"github.com/spf13/cobra"
)

var envFlags []string

func init() {
	envCmd.Flags().StringArrayVar(&envFlags, "flag", nil, "feature flag to evaluate (repeatable)")
}

var envCmd = &cobra.Command{
	Use:   "env [module...]",
	Short: "Show the environment, module versions and feature flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := session

		modules := args
		if len(modules) == 0 {
			modules = a.cfg.Modules
		}
		if len(modules) == 0 {
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
				modules = []string{info.Main.Path}
			}
		}

		a.out.header("environment")
		info := a.prober.DebugInfo(modules...)
		for _, key := range []string{"os", "release", "machine", "hostname", "go", "cpus"} {
			a.out.line("  %-10s %s", key, info[key])
		}

		if len(modules) > 0 {
			a.out.header("modules")
			for _, id := range modules {
				code := a.prober.AppVersionCode(id).OrElse(0)
				a.out.line("  %s %s (%d)", id, info[id], code)
			}
		}

		flags := slices.Sorted(maps.Keys(a.cfg.Settings))
		for _, f := range envFlags {
			if !slices.Contains(flags, f) {
				flags = append(flags, f)
			}
		}
		if len(flags) > 0 {
			a.out.header("feature flags (default %v)", a.cfg.FeatureDefault)
			for _, f := range flags {
				a.out.line("  %s %v", f, a.prober.FeatureEnabled(f))
			}
		}

		a.prober.LogDebugInfo(modules...)
		return nil
	},
}
