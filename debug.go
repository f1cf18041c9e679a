package probe

import (
	"fmt"
	"io"
	"os"
	"strings"
)

func (s Summary) Print() {
	s.Fprint(os.Stdout)
}

func (s Summary) Fprint(w io.Writer) {
	_, _ = fmt.Fprintf(w, "total: %d  ok: %d  failed: %d\n", s.Total, s.Successes, s.Failures)

	if len(s.RecentFailures) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w, "recent failures:")
	for _, rec := range s.RecentFailures {
		_, _ = fmt.Fprintf(w, "  ✗ %s %s\n", rec.Operation, rec.Target())
		if rec.Error != "" {
			_, _ = fmt.Fprintf(w, "      %s\n", rec.Error)
		}
	}
}

func (s Summary) String() string {
	var sb strings.Builder
	s.Fprint(&sb)
	return sb.String()
}

// FprintRecords writes one line per record, marking found with ● and absent
// with ○.
func FprintRecords(w io.Writer, records []Record) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(no records)")
		return
	}

	for _, rec := range records {
		status := "○"
		if rec.Success {
			status = "●"
		}

		line := fmt.Sprintf("%s %-18s %s", status, rec.Operation, rec.Target())
		if rec.Declared {
			line += " (declared)"
		}
		if !rec.Success {
			line += " ← " + rec.Code.String()
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func SprintRecords(records []Record) string {
	var sb strings.Builder
	FprintRecords(&sb, records)
	return sb.String()
}
