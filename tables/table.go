// Copyright (c) 2026 BVK Chaitanya

// Package tables renders the tabular command outputs.
package tables

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

type Table struct {
	Header []string
	Data   [][]string
}

func New(header ...string) *Table {
	return &Table{Header: header}
}

// Append adds a row. Cells are formatted with fmt.Sprint.
func (t *Table) Append(cells ...any) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = fmt.Sprint(c)
	}
	t.Data = append(t.Data, row)
}

func (t *Table) Len() int {
	return len(t.Data)
}

func (t *Table) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.Header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(t.Data)
	table.Render()
}
