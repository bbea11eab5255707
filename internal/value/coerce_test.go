package value

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{name: "nil", in: nil, want: Null()},
		{name: "int64", in: int64(42), want: Integer(42)},
		{name: "int", in: 7, want: Integer(7)},
		{name: "int8", in: int8(-3), want: Integer(-3)},
		{name: "uint32", in: uint32(9), want: Integer(9)},
		{name: "uint64 in range", in: uint64(math.MaxInt64), want: Integer(math.MaxInt64)},
		{name: "uint64 overflow", in: uint64(math.MaxUint64), want: String("18446744073709551615")},
		{name: "bool", in: true, want: Boolean(true)},
		{name: "float64", in: 1.5, want: Double(1.5)},
		{name: "float32", in: float32(0.5), want: Double(0.5)},
		{name: "decimal", in: decimal.RequireFromString("12.25"), want: Double(12.25)},
		{name: "string", in: "abc", want: String("abc")},
		{name: "empty string", in: "", want: String("")},
		{name: "time", in: ts, want: String("2024-01-02T03:04:05Z")},
		{name: "utf8 bytes", in: []byte("hello"), want: String("hello")},
		{name: "binary bytes", in: []byte{0xff, 0x00}, want: String("0xff00")},
		{name: "empty bytes", in: []byte{}, want: String("0x")},
		{name: "error value", in: errors.New("boom"), want: String("boom")},
		{name: "struct", in: struct{ A int }{A: 1}, want: String("{1}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in))
		})
	}
}

func TestCoerceColumn(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		dbType string
		want   Value
	}{
		{name: "mysql int text", in: []byte("123"), dbType: "INT", want: Integer(123)},
		{name: "unsigned bigint overflow", in: []byte("18446744073709551615"), dbType: "UNSIGNED BIGINT", want: String("18446744073709551615")},
		{name: "decimal text", in: []byte("10.50"), dbType: "DECIMAL", want: Double(10.5)},
		{name: "numeric with precision", in: []byte("3.25"), dbType: "numeric(10,2)", want: Double(3.25)},
		{name: "numeric nan", in: []byte("NaN"), dbType: "NUMERIC", want: Double(math.NaN())},
		{name: "pg bool", in: []byte("t"), dbType: "BOOL", want: Boolean(true)},
		{name: "bit one", in: []byte{1}, dbType: "BIT", want: Boolean(true)},
		{name: "bit zero", in: []byte{0}, dbType: "BIT", want: Boolean(false)},
		{name: "bit wide", in: []byte{1, 2}, dbType: "BIT", want: String("0x0102")},
		{name: "varchar", in: []byte("abc"), dbType: "VARCHAR", want: String("abc")},
		{name: "empty varchar", in: []byte(""), dbType: "VARCHAR", want: String("")},
		{name: "datetime text", in: []byte("2024-01-02 03:04:05"), dbType: "DATETIME", want: String("2024-01-02 03:04:05")},
		{name: "blob", in: []byte("abc"), dbType: "BLOB", want: String("0x616263")},
		{name: "pg uuid text", in: []byte("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), dbType: "UUID", want: String("6ba7b810-9dad-11d1-80b4-00c04fd430c8")},
		{
			name:   "mssql uniqueidentifier",
			in:     []byte{0x10, 0xb8, 0xa7, 0x6b, 0xad, 0x9d, 0xd1, 0x11, 0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8},
			dbType: "UNIQUEIDENTIFIER",
			want:   String("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		},
		{name: "native value wins over category", in: int64(5), dbType: "VARCHAR", want: Integer(5)},
		{name: "null with type", in: nil, dbType: "INT", want: Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceColumn(tt.in, tt.dbType)
			if tt.want.Kind() == KindDouble && math.IsNaN(tt.want.Float()) {
				require.Equal(t, KindDouble, got.Kind())
				assert.True(t, math.IsNaN(got.Float()))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceExoticTypesAreNonEmptyStrings(t *testing.T) {
	exotic := []struct {
		in     any
		dbType string
	}{
		{in: []byte{}, dbType: "BLOB"},
		{in: []byte{}, dbType: ""},
		{in: time.Time{}, dbType: "TIMESTAMP"},
		{in: struct{}{}, dbType: ""},
		{in: []int{1, 2}, dbType: ""},
	}
	for _, e := range exotic {
		got := CoerceColumn(e.in, e.dbType)
		require.Equal(t, KindString, got.Kind(), "%T", e.in)
		assert.NotEmpty(t, got.Str(), "%T", e.in)
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"INT", CategoryInteger},
		{"int4", CategoryInteger},
		{"UNSIGNED BIGINT", CategoryInteger},
		{"bigint unsigned", CategoryInteger},
		{"tinyint(1)", CategoryInteger},
		{"BOOL", CategoryBoolean},
		{"decimal(10,2)", CategoryFloat},
		{"DOUBLE PRECISION", CategoryFloat},
		{"VARCHAR(255)", CategoryText},
		{"_INT4", CategoryText},
		{"LONGBLOB", CategoryBinary},
		{"bytea", CategoryBinary},
		{"UNIQUEIDENTIFIER", CategoryUUID},
		{"TIMESTAMPTZ", CategoryTemporal},
		{"", CategoryUnknown},
		{"GEOGRAPHY_POINT", CategoryUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryOf(tt.in), tt.in)
	}
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null(), `null`},
		{Integer(-4), `-4`},
		{Boolean(false), `false`},
		{Double(2.5), `2.5`},
		{Double(math.Inf(1)), `"+Inf"`},
		{String(`a"b`), `"a\"b"`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.v)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(b))
	}
}

func TestRowKeepsColumnOrderAndOverwritesDuplicates(t *testing.T) {
	row := NewRow()
	row.Set("b", Integer(1))
	row.Set("a", Null())
	row.Set("b", String("second"))

	assert.Equal(t, []string{"b", "a"}, row.Columns())
	assert.Equal(t, 2, row.Len())

	v, ok := row.Get("b")
	require.True(t, ok)
	assert.Equal(t, String("second"), v)

	v, ok = row.Get("a")
	require.True(t, ok)
	assert.True(t, v.IsNull())

	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"second","a":null}`, strings.TrimSpace(string(b)))
}

func TestZeroRow(t *testing.T) {
	var row Row
	_, ok := row.Get("x")
	assert.False(t, ok)
	assert.Empty(t, row.Columns())

	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))

	row.Set("x", Integer(1))
	assert.Equal(t, map[string]any{"x": int64(1)}, row.Map())
}
