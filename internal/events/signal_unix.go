//go:build !windows

package events

import (
	"os"
	"syscall"
)

var resumeSignals = []os.Signal{syscall.SIGCONT}
