package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Printer renders human or machine output.
type Printer struct {
	JSON  bool
	YAML  bool
	Quiet bool
	Out   io.Writer
	Err   io.Writer
}

// Structured reports whether a machine-readable format was requested.
func (p *Printer) Structured() bool {
	return p.JSON || p.YAML
}

// Print writes data respecting the configured format.
func (p *Printer) Print(data any) error {
	if p.Quiet {
		return nil
	}
	if p.JSON {
		return p.encodeJSON(data)
	}
	if p.YAML {
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(p.Out, v)
		return err
	default:
		return p.encodeJSON(v)
	}
}

// Lines writes each line as-is in human mode.
func (p *Printer) Lines(lines ...string) error {
	if p.Quiet {
		return nil
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(p.Out, line); err != nil {
			return err
		}
	}
	return nil
}

// Error writes an error message.
func (p *Printer) Error(format string, args ...any) {
	if p.Err == nil {
		return
	}
	fmt.Fprintf(p.Err, format+"\n", args...)
}

func (p *Printer) encodeJSON(data any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}
