package exec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sql-bridge/internal/value"
)

type fakeCursor struct {
	cols    []string
	colsErr error
	rows    [][]any
	scanErr error
	failAt  int // 1-based row whose Scan fails; 0 never fails
	iterErr error
	pos     int
}

func (c *fakeCursor) Columns() ([]string, error) { return c.cols, c.colsErr }

func (c *fakeCursor) Next() bool {
	if c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Scan(dest ...any) error {
	if c.failAt == c.pos {
		return c.scanErr
	}
	for i, v := range c.rows[c.pos-1] {
		*dest[i].(*any) = v
	}
	return nil
}

func (c *fakeCursor) Err() error { return c.iterErr }

func TestMarshal(t *testing.T) {
	cur := &fakeCursor{
		cols: []string{"id", "name", "price", "active", "note"},
		rows: [][]any{
			{int64(1), "apple", 1.5, true, nil},
			{int64(2), []byte("pear"), float32(2), false, "x"},
		},
	}

	rows, err := Marshal(cur)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"id", "name", "price", "active", "note"}, rows[0].Columns())

	v, ok := rows[0].Get("note")
	require.True(t, ok)
	assert.True(t, v.IsNull())

	v, _ = rows[1].Get("name")
	assert.Equal(t, value.String("pear"), v)
	v, _ = rows[1].Get("price")
	assert.Equal(t, value.Double(2), v)
	v, _ = rows[1].Get("active")
	assert.Equal(t, value.Boolean(false), v)
}

func TestMarshalEmpty(t *testing.T) {
	rows, err := Marshal(&fakeCursor{cols: []string{"a"}})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMarshalScanFailureDiscardsRows(t *testing.T) {
	scanErr := errors.New("conversion failed on row 3")
	cur := &fakeCursor{
		cols:    []string{"a"},
		rows:    [][]any{{int64(1)}, {int64(2)}, {int64(3)}},
		scanErr: scanErr,
		failAt:  3,
	}

	rows, err := Marshal(cur)
	assert.ErrorIs(t, err, scanErr)
	assert.Nil(t, rows)
}

func TestMarshalIterationFailure(t *testing.T) {
	iterErr := errors.New("connection reset")
	rows, err := Marshal(&fakeCursor{
		cols:    []string{"a"},
		rows:    [][]any{{int64(1)}},
		iterErr: iterErr,
	})
	assert.ErrorIs(t, err, iterErr)
	assert.Nil(t, rows)
}

func TestMarshalColumnsFailure(t *testing.T) {
	colsErr := errors.New("rows closed")
	rows, err := Marshal(&fakeCursor{colsErr: colsErr})
	assert.ErrorIs(t, err, colsErr)
	assert.Nil(t, rows)
}

func TestMarshalDuplicateColumns(t *testing.T) {
	rows, err := Marshal(&fakeCursor{
		cols: []string{"a", "b", "a"},
		rows: [][]any{{int64(1), int64(2), int64(3)}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, 2, rows[0].Len())
	assert.Equal(t, []string{"a", "b"}, rows[0].Columns())
	v, _ := rows[0].Get("a")
	assert.Equal(t, value.Integer(3), v)
}

func TestMarshalResetsValuesBetweenRows(t *testing.T) {
	cur := &fakeCursor{
		cols: []string{"a", "b"},
		rows: [][]any{{int64(1), "x"}, {int64(2)}},
	}
	rows, err := Marshal(cur)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	v, _ := rows[1].Get("b")
	assert.True(t, v.IsNull())
}
