package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"sql-bridge/internal/exec"
	"sql-bridge/internal/value"
)

// grid is a row set flattened to text for display.
type grid struct {
	columns []string
	cells   [][]string
}

// gridFromRows takes the column order from the first row; every row of one
// result has the same columns.
func gridFromRows(rows []value.Row) grid {
	var g grid
	if len(rows) == 0 {
		return g
	}
	g.columns = rows[0].Columns()
	g.cells = make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(g.columns))
		for i, col := range g.columns {
			if v, ok := row.Get(col); ok {
				line[i] = v.String()
			}
		}
		g.cells = append(g.cells, line)
	}
	return g
}

func (g grid) width(col int) int {
	w := utf8.RuneCountInString(g.columns[col])
	for _, line := range g.cells {
		if n := utf8.RuneCountInString(line[col]); n > w {
			w = n
		}
	}
	return w
}

// writeTo prints g as an aligned table followed by the row count.
func (g grid) writeTo(w io.Writer) {
	if len(g.columns) == 0 {
		fmt.Fprintf(w, "(0 rows)\n")
		return
	}

	widths := make([]int, len(g.columns))
	for i := range g.columns {
		widths[i] = g.width(i)
	}

	printRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprint(w, padRight(v, widths[i]))
		}
		fmt.Fprintln(w)
	}

	printRow(g.columns)
	for i := range g.columns {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w)
	for _, line := range g.cells {
		printRow(line)
	}
	fmt.Fprintf(w, "(%d rows)\n", len(g.cells))
}

func padRight(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}

func summarize(out exec.Outcome) string {
	if out.Kind == exec.OutcomeRowSet {
		return fmt.Sprintf("%d rows", len(out.Rows))
	}
	return fmt.Sprintf("OK (%d affected)", out.Affected)
}
