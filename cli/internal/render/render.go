// Package render writes command results as a table, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"sigs.k8s.io/yaml"
)

type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

func (o OutputFormat) String() string {
	return string(o)
}

func OutputFormats() []string {
	return []string{OutputFormatTable.String(), OutputFormatJSON.String(), OutputFormatYAML.String()}
}

// Render writes v as JSON or YAML, or the given rows as a table.
func Render(w io.Writer, format OutputFormat, v any, header []string, rows [][]string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding as yaml failed: %w", err)
		}
		_, err = w.Write(data)
		return err
	case OutputFormatTable:
		Table(w, header, rows)
		return nil
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}
}

// Table renders rows in the light style without outer border.
func Table(w io.Writer, header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(toRow(header))
	for _, row := range rows {
		t.AppendRow(toRow(row))
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}
