package probe_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hookkit/probe"
)

func TestFprintRecordsEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	probe.FprintRecords(&buf, nil)

	if !strings.Contains(buf.String(), "no records") {
		t.Errorf("expected empty marker, got: %s", buf.String())
	}
}

func TestFprintRecords(t *testing.T) {
	t.Parallel()

	records := []probe.Record{
		{Operation: probe.OpResolveType, Type: "host.Display", Success: true},
		{Operation: probe.OpResolveMember, Type: "host.Display", Member: "resize", Signature: "(int, int)", Success: true, Declared: true},
		{Operation: probe.OpInvoke, Type: "host.Display", Member: "Crash", Signature: "()", Code: probe.ErrCodePanic},
	}

	output := probe.SprintRecords(records)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got: %s", output)
	}

	if !strings.HasPrefix(lines[0], "●") || !strings.Contains(lines[0], "resolve-type") {
		t.Errorf("expected found marker, got: %s", lines[0])
	}
	if !strings.Contains(lines[1], "host.Display#resize(int, int)") || !strings.Contains(lines[1], "(declared)") {
		t.Errorf("expected declared member line, got: %s", lines[1])
	}
	if !strings.HasPrefix(lines[2], "○") || !strings.Contains(lines[2], "← PANIC") {
		t.Errorf("expected absent marker with code, got: %s", lines[2])
	}
}

func TestSummaryPrint(t *testing.T) {
	t.Parallel()

	records := []probe.Record{
		{Operation: probe.OpResolveType, Type: "a", Success: true},
		{Operation: probe.OpResolveType, Type: "b", Error: "not here", Code: probe.ErrCodeTypeNotFound},
	}

	var buf bytes.Buffer
	probe.Summarize(records).Fprint(&buf)

	output := buf.String()
	if !strings.Contains(output, "total: 2  ok: 1  failed: 1") {
		t.Errorf("expected counts, got: %s", output)
	}
	if !strings.Contains(output, "recent failures:") || !strings.Contains(output, "not here") {
		t.Errorf("expected failure listing, got: %s", output)
	}
}

func TestSummaryStringWithoutFailures(t *testing.T) {
	t.Parallel()

	s := probe.Summarize([]probe.Record{{Success: true}})
	if strings.Contains(s.String(), "recent failures") {
		t.Errorf("unexpected failure section: %s", s.String())
	}
}

func TestRecordTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rec  probe.Record
		want string
	}{
		{probe.Record{Type: "host.Display"}, "host.Display"},
		{probe.Record{Type: "host.Display", Member: "Area", Signature: "()"}, "host.Display#Area()"},
		{probe.Record{Type: "unit.Widget", Locator: "/data/unit.so"}, "unit.Widget [/data/unit.so]"},
	}

	for _, tt := range tests {
		if got := tt.rec.Target(); got != tt.want {
			t.Errorf("Target() = %q, want %q", got, tt.want)
		}
	}
}

func TestOperationString(t *testing.T) {
	t.Parallel()

	if probe.OpLoadExternalType.String() != "load-external-type" {
		t.Errorf("unexpected name %s", probe.OpLoadExternalType)
	}
	if probe.Operation(99).String() != "operation(99)" {
		t.Errorf("unexpected name %s", probe.Operation(99))
	}
}

func TestErrorCodeInRecordOutput(t *testing.T) {
	t.Parallel()

	err := &probe.Error{Code: probe.ErrCodeLoaderFailed, Message: "bad", Cause: errors.New("elf")}
	rec := probe.Record{Operation: probe.OpLoadExternalType, Type: "x", Code: probe.CodeOf(err), Error: err.Error()}

	if out := probe.SprintRecords([]probe.Record{rec}); !strings.Contains(out, "LOADER_FAILED") {
		t.Errorf("expected code name in output, got: %s", out)
	}
}
