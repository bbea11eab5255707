package main

import (
	"strconv"
	"strings"

	"sql-bridge/internal/db"
	"sql-bridge/internal/value"
)

// rowView is a table opened for editing: its columns and the rows on
// screen, in grid order.
type rowView struct {
	table   string
	columns []db.Column
	rows    []value.Row
}

// cellText is what the edit form shows for v; NULL is an empty field.
func cellText(v value.Value) string {
	if v.IsNull() {
		return ""
	}
	return v.String()
}

// cellValue parses text typed into the field of col. An empty field is
// NULL when the column allows it.
func cellValue(text string, col db.Column) value.Value {
	if text == "" && col.Nullable {
		return value.Null()
	}
	t := strings.TrimSpace(text)
	switch value.CategoryOf(col.Type) {
	case value.CategoryInteger:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return value.Integer(n)
		}
	case value.CategoryFloat:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return value.Double(f)
		}
	case value.CategoryBoolean:
		if b, err := strconv.ParseBool(t); err == nil {
			return value.Boolean(b)
		}
	}
	return value.String(text)
}

// editedRow keeps the fields whose text no longer matches orig.
func editedRow(columns []db.Column, orig value.Row, texts map[string]string) value.Row {
	out := value.NewRow()
	for _, c := range columns {
		text, ok := texts[c.Name]
		if !ok {
			continue
		}
		if v, found := orig.Get(c.Name); found && cellText(v) == text {
			continue
		}
		out.Set(c.Name, cellValue(text, c))
	}
	return out
}

// insertedRow keeps the filled fields so the table's defaults apply to the
// rest.
func insertedRow(columns []db.Column, texts map[string]string) value.Row {
	out := value.NewRow()
	for _, c := range columns {
		if text := texts[c.Name]; text != "" {
			out.Set(c.Name, cellValue(text, c))
		}
	}
	return out
}
