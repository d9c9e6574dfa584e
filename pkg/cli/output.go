package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how structured command results are rendered.
// The zero value renders YAML.
type OutputFormat string

const (
	FormatYAML  OutputFormat = "yaml"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
)

// Table holds a column-aligned listing. Commands build one for their
// default view and hand the underlying values to Print when the user
// asked for yaml or json instead.
type Table struct {
	Header []string
	Rows   [][]string
}

// Print renders v on stdout.
func (f OutputFormat) Print(v any) error {
	return f.Write(os.Stdout, v)
}

// Write renders v to w in the chosen format. JSON is indented two
// spaces, table expects a Table, and anything unrecognized is an
// error so a typo in -o does not silently fall back.
func (f OutputFormat) Write(w io.Writer, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML, "":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatTable:
		switch t := v.(type) {
		case Table:
			return t.Write(w)
		case *Table:
			return t.Write(w)
		default:
			return fmt.Errorf("table format needs a cli.Table, got %T", v)
		}
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// Print renders the table on stdout.
func (t Table) Print() error {
	return t.Write(os.Stdout)
}

// Write renders the table to w with columns padded to align.
func (t Table) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Header) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// PrintSuccess reports a completed action on stdout.
func PrintSuccess(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}

// PrintInfo reports a neutral note on stdout.
func PrintInfo(format string, args ...any) {
	fmt.Printf("ℹ "+format+"\n", args...)
}
