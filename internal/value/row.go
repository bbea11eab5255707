package value

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row maps column names to values in column order. Setting a name that is
// already present replaces its value and keeps its original position.
type Row struct {
	m *orderedmap.OrderedMap[string, Value]
}

func NewRow() Row {
	return Row{m: orderedmap.New[string, Value]()}
}

func (r *Row) Set(column string, v Value) {
	if r.m == nil {
		r.m = orderedmap.New[string, Value]()
	}
	r.m.Set(column, v)
}

func (r Row) Get(column string) (Value, bool) {
	if r.m == nil {
		return Value{}, false
	}
	return r.m.Get(column)
}

func (r Row) Len() int {
	if r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Columns returns the column names in insertion order.
func (r Row) Columns() []string {
	out := make([]string, 0, r.Len())
	r.Each(func(column string, _ Value) bool {
		out = append(out, column)
		return true
	})
	return out
}

// Each calls fn for every column in order until fn returns false.
func (r Row) Each(fn func(column string, v Value) bool) {
	if r.m == nil {
		return
	}
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Map flattens the row to plain Go values, losing column order.
func (r Row) Map() map[string]any {
	out := make(map[string]any, r.Len())
	r.Each(func(column string, v Value) bool {
		out[column] = v.Interface()
		return true
	})
	return out
}

func (r Row) MarshalJSON() ([]byte, error) {
	if r.m == nil {
		return []byte("{}"), nil
	}
	return r.m.MarshalJSON()
}
