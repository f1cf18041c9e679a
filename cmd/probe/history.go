package main

import (
	"github.com/spf13/cobra"

	"github.com/hookkit/probe"
	"github.com/hookkit/probe/journal"
)

var (
	historyRecords  bool
	historyFailures bool
)

func init() {
	historyCmd.Flags().BoolVar(&historyRecords, "records", false, "list every record")
	historyCmd.Flags().BoolVar(&historyFailures, "failures", false, "with --records, list failures only")
}

var historyCmd = &cobra.Command{
	Use:   "history [journal]",
	Short: "Summarize a probe journal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := session

		path := a.cfg.Journal
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			var err error
			if path, err = journal.DefaultPath("probe"); err != nil {
				return err
			}
		}

		records, err := journal.ReadAll(path)
		if err != nil {
			if len(records) == 0 {
				return err
			}
			a.logger.Warn("journal ends with a torn record", "journal", path, "error", err)
		}

		a.out.header("%s", path)
		a.out.summary(probe.Summarize(records))

		if historyRecords {
			if historyFailures {
				records = failuresOnly(records)
			}
			a.out.records(records)
		}
		return nil
	},
}

func failuresOnly(records []probe.Record) []probe.Record {
	var out []probe.Record
	for _, rec := range records {
		if !rec.Success {
			out = append(out, rec)
		}
	}
	return out
}
