/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package printers

import (
	"encoding/json"
	"fmt"
	"io"
)

// ResourcePrinter is an interface that knows how to print objects.
type ResourcePrinter interface {
	PrintObj(obj interface{}, w io.Writer) error
}

// Dispatcher selects between JSON and human-readable output formats.
type Dispatcher struct {
	JSON bool
}

func (d *Dispatcher) PrintObj(obj interface{}, w io.Writer) error {
	if d.JSON {
		p := &JSONPrinter{}
		return p.PrintObj(obj, w)
	}

	p := &HumanReadablePrinter{}
	return p.PrintObj(obj, w)
}

// JSONPrinter prints objects as indented JSON.
type JSONPrinter struct{}

func (p *JSONPrinter) PrintObj(obj interface{}, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(obj)
}

// HumanReadablePrinter handles table-like output.
type HumanReadablePrinter struct{}

func (p *HumanReadablePrinter) PrintObj(obj interface{}, w io.Writer) error {
	switch v := obj.(type) {
	case PreviewOutput:
		return p.printPreview(&v, w)
	case *PreviewOutput:
		return p.printPreview(v, w)
	default:
		return fmt.Errorf("no human-readable printer registered for %T", obj)
	}
}
