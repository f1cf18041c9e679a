package probe

import (
	"time"
)

// ProbeHook observes every probe after its outcome is fixed. err is nil on
// success.
type ProbeHook func(op Operation, target string, duration time.Duration, err error)
