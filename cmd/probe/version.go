package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hookkit/probe"
)

// version can be overridden at build time via -ldflags.
var version = "0.1.0-dev"

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

type versionPayload struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Release string `json:"release,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the probe version and platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := probe.CaptureSnapshot()
		payload := versionPayload{
			Tool:    "probe",
			Version: version,
			Go:      runtime.Version(),
			OS:      s.OS + "/" + s.Arch,
			Release: s.Release,
		}

		switch strings.ToLower(versionFormat) {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		case "pretty":
			session.out.header("probe %s", payload.Version)
			session.out.line("%s %s %s", payload.Go, payload.OS, payload.Release)
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}
