package db

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"sql-bridge/internal/value"
)

var (
	// ErrNoPrimaryKey rejects updates and deletes on tables whose rows
	// cannot be addressed by key.
	ErrNoPrimaryKey = errors.New("table has no primary key")

	ErrNoChanges = errors.New("no column changed")
)

// Literal renders v as SQL text for d. Statements are sent without
// arguments, so row edits are spelled out in full.
func Literal(d Dialect, v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return "NULL"
	case value.KindInteger:
		return strconv.FormatInt(v.Int(), 10)
	case value.KindBoolean:
		if _, ok := d.(mssqlDialect); ok {
			if v.Bool() {
				return "1"
			}
			return "0"
		}
		if v.Bool() {
			return "TRUE"
		}
		return "FALSE"
	case value.KindDouble:
		if math.IsNaN(v.Float()) || math.IsInf(v.Float(), 0) {
			return d.QuoteString(v.String())
		}
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	default:
		return d.QuoteString(v.Str())
	}
}

// InsertRow builds an INSERT of every column in row, in row order.
func InsertRow(d Dialect, table string, row value.Row) (string, error) {
	if row.Len() == 0 {
		return "", errors.New("row has no columns")
	}
	cols := make([]string, 0, row.Len())
	vals := make([]string, 0, row.Len())
	row.Each(func(column string, v value.Value) bool {
		cols = append(cols, d.QuoteIdent(column))
		vals = append(vals, Literal(d, v))
		return true
	})
	return "INSERT INTO " + d.QuoteIdent(table) + " (" + strings.Join(cols, ", ") +
		") VALUES (" + strings.Join(vals, ", ") + ")", nil
}

// UpdateRow sets the columns whose value differs between before and after,
// addressing the row by the primary key values in before.
func UpdateRow(d Dialect, table string, columns []Column, before, after value.Row) (string, error) {
	where, err := keyCondition(d, columns, before)
	if err != nil {
		return "", err
	}

	old := before.Map()
	var sets []string
	after.Each(func(column string, v value.Value) bool {
		if prev, ok := old[column]; ok && prev == v.Interface() {
			return true
		}
		sets = append(sets, d.QuoteIdent(column)+" = "+Literal(d, v))
		return true
	})
	if len(sets) == 0 {
		return "", ErrNoChanges
	}
	return "UPDATE " + d.QuoteIdent(table) + " SET " + strings.Join(sets, ", ") + " WHERE " + where, nil
}

// DeleteRow removes the row whose primary key matches row.
func DeleteRow(d Dialect, table string, columns []Column, row value.Row) (string, error) {
	where, err := keyCondition(d, columns, row)
	if err != nil {
		return "", err
	}
	return "DELETE FROM " + d.QuoteIdent(table) + " WHERE " + where, nil
}

func keyCondition(d Dialect, columns []Column, row value.Row) (string, error) {
	var conds []string
	for _, c := range columns {
		if !c.PrimaryKey {
			continue
		}
		v, ok := row.Get(c.Name)
		if !ok {
			return "", errors.New("row is missing key column " + c.Name)
		}
		if v.IsNull() {
			conds = append(conds, d.QuoteIdent(c.Name)+" IS NULL")
			continue
		}
		conds = append(conds, d.QuoteIdent(c.Name)+" = "+Literal(d, v))
	}
	if len(conds) == 0 {
		return "", ErrNoPrimaryKey
	}
	return strings.Join(conds, " AND "), nil
}
