package journal_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hookkit/probe"
	"github.com/hookkit/probe/journal"
	"github.com/hookkit/probe/probetest"
)

func TestJournalRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "probes.mp")
	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	now := time.Now().Truncate(time.Millisecond)
	failure := probe.Record{
		Time:      now,
		Duration:  3 * time.Millisecond,
		Operation: probe.OpInvoke,
		Type:      "host.Display",
		Member:    "Crash",
		Signature: "()",
		Code:      probe.ErrCodePanic,
		Error:     "recovered panic",
		Stack:     "goroutine 7 [running]",
		Env:       probe.CaptureSnapshot(),
		Cause:     errors.New("not persisted"),
	}

	ctx := context.Background()
	if err := j.Record(ctx, failure); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := j.Record(ctx, probe.Record{Operation: probe.OpResolveType, Type: "host.Display", Success: true}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	records, err := journal.ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	got := records[0]
	if !got.Time.Equal(now) || got.Duration != failure.Duration {
		t.Errorf("timing lost: %v %v", got.Time, got.Duration)
	}
	if got.Code != probe.ErrCodePanic || got.Stack != failure.Stack || got.Target() != failure.Target() {
		t.Errorf("unexpected record %+v", got)
	}
	if got.Env != failure.Env {
		t.Errorf("snapshot lost: %+v", got.Env)
	}
	if got.Cause != nil {
		t.Error("cause must not be persisted")
	}
	if !records[1].Success {
		t.Error("expected second record to be a success")
	}
}

func TestJournalAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "probes.mp")

	for i := range 2 {
		j, err := journal.Open(path)
		if err != nil {
			t.Fatalf("Open %d failed: %v", i, err)
		}
		_ = j.Record(context.Background(), probe.Record{Type: "run"})
		_ = j.Close()
	}

	records, err := journal.ReadAll(path)
	if err != nil || len(records) != 2 {
		t.Errorf("expected records from both runs, got %d, %v", len(records), err)
	}
}

func TestJournalClosed(t *testing.T) {
	t.Parallel()

	j, err := journal.Open(filepath.Join(t.TempDir(), "probes.mp"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = j.Close()

	if err := j.Record(context.Background(), probe.Record{}); !errors.Is(err, journal.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestReadAllTruncated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "probes.mp")
	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = j.Record(context.Background(), probe.Record{Type: "complete"})
	_ = j.Record(context.Background(), probe.Record{Type: "cut short"})
	_ = j.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if err := os.Truncate(path, info.Size()-3); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}

	records, err := journal.ReadAll(path)
	if err == nil {
		t.Error("expected an error for a torn frame")
	}
	if len(records) != 1 || records[0].Type != "complete" {
		t.Errorf("expected the intact prefix, got %+v", records)
	}
}

func TestJournalAsProberRecorder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "probes.mp")
	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tp := probetest.New(t, probe.WithRecorder(j))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tp.ResolveType("missing.Type", nil)
		}()
	}
	wg.Wait()
	_ = j.Close()

	records, err := journal.ReadAll(path)
	if err != nil || len(records) != 8 {
		t.Fatalf("expected 8 records, got %d, %v", len(records), err)
	}
	if records[0].Code != probe.ErrCodeTypeNotFound {
		t.Errorf("unexpected code %s", records[0].Code)
	}
}
