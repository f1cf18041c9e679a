package probe

import (
	"os"
	"runtime"
	"sync"
)

// Snapshot fingerprints the environment a probe ran in.
type Snapshot struct {
	OS        string `msgpack:"os"`
	Arch      string `msgpack:"arch"`
	Release   string `msgpack:"release,omitempty"`
	Machine   string `msgpack:"machine,omitempty"`
	Hostname  string `msgpack:"hostname,omitempty"`
	GoVersion string `msgpack:"go"`
	NumCPU    int    `msgpack:"cpus"`
}

var captureSnapshot = sync.OnceValue(func() Snapshot {
	s := Snapshot{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
	}
	if host, err := os.Hostname(); err == nil {
		s.Hostname = host
	}
	s.Release, s.Machine = kernelInfo()
	return s
})

// CaptureSnapshot returns the process-wide environment snapshot.
func CaptureSnapshot() Snapshot {
	return captureSnapshot()
}
