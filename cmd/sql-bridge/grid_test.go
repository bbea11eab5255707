package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"sql-bridge/internal/exec"
	"sql-bridge/internal/value"
)

func TestGridWriteTo(t *testing.T) {
	r1 := value.NewRow()
	r1.Set("id", value.Integer(1))
	r1.Set("name", value.String("apple"))
	r2 := value.NewRow()
	r2.Set("id", value.Integer(10))
	r2.Set("name", value.Null())

	var buf bytes.Buffer
	gridFromRows([]value.Row{r1, r2}).writeTo(&buf)

	want := "" +
		"id | name \n" +
		"---+------\n" +
		"1  | apple\n" +
		"10 | NULL \n" +
		"(2 rows)\n"
	assert.Equal(t, want, buf.String())
}

func TestGridEmpty(t *testing.T) {
	var buf bytes.Buffer
	gridFromRows(nil).writeTo(&buf)
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "0 rows", summarize(exec.RowSet(nil)))
	assert.Equal(t, "OK (3 affected)", summarize(exec.AffectedCount(3)))
}
