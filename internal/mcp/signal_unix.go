//go:build !windows

package mcp

import (
	"os"
	"syscall"
)

// shutdownSignals stop a running server. On Unix systems, this includes
// both SIGINT and SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
