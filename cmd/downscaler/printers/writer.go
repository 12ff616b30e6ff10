/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package printers

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/samber/lo"
)

type textWriter struct {
	w *tabwriter.Writer
}

func newTextWriter(w io.Writer) *textWriter {
	return &textWriter{w: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

// line writes a formatted line with a newline at the end.
func (t *textWriter) line(format string, args ...interface{}) {
	lo.Must1(fmt.Fprintf(t.w, format+"\n", args...))
}

// field writes an aligned "label: value" row.
func (t *textWriter) field(label string, value interface{}) {
	lo.Must1(fmt.Fprintf(t.w, "%s:\t%v\n", label, value))
}

func (t *textWriter) newline() {
	lo.Must1(fmt.Fprintln(t.w))
}

func (t *textWriter) flush() error {
	return t.w.Flush()
}
