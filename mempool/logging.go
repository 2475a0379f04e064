package mempool

import (
	"io"
	"log/slog"

	"github.com/memkit/memkit/internal/logger"
)

// EnableLogging routes the allocator's diagnostics to w at the given level.
// The allocator never logs on the allocation fast path; expect span-level
// activity at Debug and consistency diagnostics at Warn.
func EnableLogging(w io.Writer, level slog.Level) {
	logger.Init(logger.Options{Enabled: true, Output: w, Level: level})
}

// DisableLogging restores the default discard logger.
func DisableLogging() {
	logger.Init(logger.Options{})
}
