package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatCsv   = "csv"
	formatYaml  = "yaml"
)

func validFormat(f string) bool {
	return slices.Contains([]string{formatTable, formatCsv, formatYaml}, f)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// column is one column of a record listing.
type column[T any] struct {
	header string
	value  func(record T) any
}

// render writes `records` in the given format. yaml renders the whole
// record, the other formats only the given columns.
func render[T any](w io.Writer, f string, columns []column[T], records []T) error {
	if f == formatYaml {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		err := encoder.Encode(records)
		if err != nil {
			return err
		}
		return encoder.Close()
	}

	t := newTable(w)

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c.header
	}
	t.AppendHeader(header)

	for _, record := range records {
		row := make(table.Row, len(columns))
		for i, c := range columns {
			row[i] = c.value(record)
		}
		t.AppendRow(row)
	}

	switch f {
	case formatCsv:
		t.RenderCSV()
	case formatTable:
		t.Render()
	default:
		return fmt.Errorf("unknown format %q", f)
	}
	return nil
}

func joinName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
