//go:build windows

package events

import "os"

var resumeSignals []os.Signal
