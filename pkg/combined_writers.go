package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter tees every Write to all underlying writers. The logging
// setup uses it to send log lines to stdout and the rotated log file at
// the same time.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

// Write writes p to each writer in turn. A failing writer does not stop
// the others; errors are combined, and n counts only successful writes.
func (cw CombinedWriter) Write(p []byte) (n int, err error) {
	for _, w := range cw.Writers {
		written, wErr := w.Write(p)
		if wErr != nil {
			err = multierr.Append(err, wErr)
			continue
		}
		n += written
	}
	return n, err
}
