package cache

import (
	"strings"
)

// LogWriter is an io.Writer that captures log output and sends it to the
// cache's capped log list. It is plugged into the log package as a sink, so
// Redis failures here must not log through the standard logger again.
type LogWriter struct {
	cache Cache
}

// NewLogWriter creates a new LogWriter.
func NewLogWriter(c Cache) *LogWriter {
	return &LogWriter{cache: c}
}

// Write implements the io.Writer interface.
func (lw *LogWriter) Write(p []byte) (n int, err error) {
	entry := strings.TrimRight(string(p), "\n")
	if entry != "" {
		_ = lw.cache.AddLogLine(entry)
	}
	return len(p), nil
}
