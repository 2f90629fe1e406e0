package rw

import (
	"bufio"
	"fmt"
	"io"
)

// LineWriter is a buffered text writer that remembers the first error, so
// callers can emit many lines and check once on Flush.
type LineWriter struct {
	w     *bufio.Writer
	err   error
	lines int
}

func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: bufio.NewWriter(w)}
}

func (w *LineWriter) Printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
	w.lines++
}

func (w *LineWriter) Lines() int {
	return w.lines
}

func (w *LineWriter) Err() error {
	return w.err
}

func (w *LineWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}
