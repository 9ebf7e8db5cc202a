package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
)

// Init routes the standard logger through a tee writer. The sink receives a
// copy of every log line (the cache package provides a Redis-backed sink);
// a nil sink keeps console-only logging.
func Init(sink io.Writer) {
	log.SetOutput(&teeWriter{sink: sink})
	log.SetFlags(0) // We handle timestamping and file info ourselves.
}

// Error logs an error with the caller's file and line.
func Error(context string, err error) {
	_, file, line, ok := runtime.Caller(1)
	var callerInfo string
	if ok {
		parts := strings.Split(file, "/")
		if len(parts) > 2 {
			file = strings.Join(parts[len(parts)-2:], "/")
		}
		callerInfo = fmt.Sprintf("%s:%d", file, line)
	}

	log.Printf("[ERROR] in %s: %s\n%v\n", callerInfo, context, err)
}

// Fatal logs an error and then exits the program.
func Fatal(context string, err error) {
	Error(context, err)
	os.Exit(1)
}

// teeWriter writes log output to the console and to the optional sink.
type teeWriter struct {
	sink io.Writer
}

func (w *teeWriter) Write(p []byte) (n int, err error) {
	fmt.Print(string(p))
	if w.sink != nil {
		_, _ = w.sink.Write(p)
	}
	return len(p), nil
}
