package main

import (
	"context"
	"reflect"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hookkit/probe"
	"github.com/hookkit/probe/internal/config"
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest.toml>",
	Short: "Run every [[probe]] of a manifest concurrently",
	Long: `batch probes each target of the manifest and prints a found/absent
table. Absent targets do not change the exit status.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := session

		manifest, err := config.LoadManifest(args[0])
		if err != nil {
			return err
		}

		results, err := runBatch(cmd.Context(), a.prober, manifest)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(a.out.w, 0, 4, 2, ' ', 0)
		for _, r := range results {
			code := "-"
			if !r.Found {
				code = probe.CodeOf(r.Cause).String()
			}
			_, _ = tw.Write([]byte(r.Target.Name + "\t" + a.out.status(r.Found) + "\t" + code + "\n"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		a.out.summary(a.history.Summary())
		return nil
	},
}

type batchResult struct {
	Target config.Target
	Found  bool
	Cause  error
}

// runBatch probes every target with at most manifest.Jobs in flight. Results
// keep manifest order.
func runBatch(ctx context.Context, p *probe.Prober, manifest *config.Manifest) ([]batchResult, error) {
	results := make([]batchResult, len(manifest.Targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(manifest.Jobs, len(manifest.Targets)))

	for i, target := range manifest.Targets {
		g.Go(func() error {
			params, err := parseParams(target.Params)
			if err != nil {
				return err
			}
			found, cause := probeTarget(gctx, p, target, params)
			results[i] = batchResult{Target: target, Found: found, Cause: cause}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func probeTarget(ctx context.Context, p *probe.Prober, target config.Target, params []reflect.Type) (bool, error) {
	var t probe.Outcome[*probe.Type]
	if target.Locator != "" {
		t = p.LoadExternalTypeCtx(ctx, target.Locator, target.Type, nil)
	} else {
		t = p.ResolveTypeCtx(ctx, target.Type, nil)
	}
	if !t.Present() || target.Member == "" {
		return t.Present(), t.Cause()
	}

	m := p.ResolveMemberCtx(ctx, t.Value(), target.Member, params...)
	return m.Present(), m.Cause()
}
