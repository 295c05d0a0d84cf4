// Package writer implements the line based text output shared by the
// generators.
package writer

import (
	"fmt"
	"io"
)

// Writer writes formatted lines to an output. After the first failed write
// all further writes are skipped and the error is kept for Err.
type Writer struct {
	writer io.Writer
	lines  int
	err    error
}

// New creates a new writer.
func New(writer io.Writer) *Writer {
	return &Writer{
		writer: writer,
	}
}

// Line writes a single line.
func (w *Writer) Line(line string) {
	if w.err != nil {
		return
	}
	if _, err := fmt.Fprintln(w.writer, line); err != nil {
		w.err = fmt.Errorf("writing line %d: %w", w.lines+1, err)
		return
	}
	w.lines++
}

// Linef formats and writes a single line.
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Empty writes an empty line.
func (w *Writer) Empty() {
	w.Line("")
}

// Err returns the first error that occurred while writing.
func (w *Writer) Err() error {
	return w.err
}
