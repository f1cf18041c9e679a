// Package journal persists probe records to an append-only msgpack file so
// failures can be inspected after the process is gone.
package journal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/hookkit/probe"
)

// Current schema version - increment when Entry changes incompatibly.
const schemaVersion uint16 = 1

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("journal closed")

// Entry is one journal frame.
type Entry struct {
	Schema uint16       `msgpack:"schema"`
	Record probe.Record `msgpack:"record"`
}

// Journal is a Recorder that appends records to a file. Safe for concurrent
// use.
type Journal struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *bufio.Writer
	enc  *msgpack.Encoder
}

// DefaultPath returns the journal location for app under XDG_STATE_HOME,
// falling back to ~/.local/state.
func DefaultPath(app string) (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, app, "probes.mp"), nil
}

// Open opens path for appending, creating it and its directory if needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	w := bufio.NewWriter(f)
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)

	return &Journal{path: path, f: f, w: w, enc: enc}, nil
}

func (j *Journal) Path() string {
	return j.path
}

// Record appends rec and flushes it to the file.
func (j *Journal) Record(_ context.Context, rec probe.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.f == nil {
		return ErrClosed
	}
	if err := j.enc.Encode(&Entry{Schema: schemaVersion, Record: rec}); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return j.w.Flush()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.f == nil {
		return nil
	}
	flushErr := j.w.Flush()
	closeErr := j.f.Close()
	j.f = nil
	return errors.Join(flushErr, closeErr)
}

// ReadAll decodes every record in the journal at path, oldest first. Frames
// from another schema version are skipped.
func ReadAll(path string) ([]probe.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return Decode(f)
}

// Decode reads journal frames from r until EOF.
func Decode(r io.Reader) ([]probe.Record, error) {
	dec := msgpack.NewDecoder(bufio.NewReader(r))

	var records []probe.Record
	for {
		if _, err := dec.PeekCode(); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return records, err
		}

		var entry Entry
		if err := dec.Decode(&entry); err != nil {
			// EOF inside a frame means the last write was torn
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return records, fmt.Errorf("decode record %d: %w", len(records), err)
		}
		if entry.Schema != schemaVersion {
			continue
		}
		records = append(records, entry.Record)
	}
}
