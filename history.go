package probe

import (
	"context"
	"sync"

	"github.com/eapache/queue"
)

const DefaultHistorySize = 100

// History keeps the most recent records in memory. Outside verbose mode only
// failures are kept.
type History struct {
	mu      sync.Mutex
	entries *queue.Queue
	size    int
	verbose bool
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		entries: queue.New(),
		size:    size,
	}
}

// SetVerbose switches probe mode, in which successes are kept too.
func (h *History) SetVerbose(verbose bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.verbose = verbose
}

func (h *History) Verbose() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verbose
}

func (h *History) Record(_ context.Context, rec Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rec.Success && !h.verbose {
		return nil
	}

	h.entries.Add(rec)
	for h.entries.Length() > h.size {
		h.entries.Remove()
	}
	return nil
}

// Entries returns the kept records, oldest first.
func (h *History) Entries() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Record, h.entries.Length())
	for i := range out {
		out[i] = h.entries.Get(i).(Record)
	}
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries.Length()
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = queue.New()
}

// Summary counts kept records and lists the last ten failures.
type Summary struct {
	Total          int
	Successes      int
	Failures       int
	RecentFailures []Record
}

const recentFailureCount = 10

func (h *History) Summary() Summary {
	return Summarize(h.Entries())
}

func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	var failures []Record
	for _, rec := range records {
		if rec.Success {
			s.Successes++
			continue
		}
		s.Failures++
		failures = append(failures, rec)
	}
	if len(failures) > recentFailureCount {
		failures = failures[len(failures)-recentFailureCount:]
	}
	s.RecentFailures = failures
	return s
}
