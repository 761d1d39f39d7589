package store

// Table is an insertion-ordered mapping from driver code to a string value
// (display name or team). Iteration order is the order in which codes were
// first set; later sets replace the value but keep the original position.
type Table struct {
	keys   []string
	values map[string]string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]string)}
}

// Set stores value under code.
func (t *Table) Set(code, value string) {
	if _, ok := t.values[code]; !ok {
		t.keys = append(t.keys, code)
	}
	t.values[code] = value
}

// Get returns the value for code.
func (t *Table) Get(code string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.values[code]
	return v, ok
}

// Keys returns the codes in iteration order. The slice is a copy.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Each calls fn for every entry in iteration order until fn returns false.
func (t *Table) Each(fn func(code, value string) bool) {
	if t == nil {
		return
	}
	for _, k := range t.keys {
		if !fn(k, t.values[k]) {
			return
		}
	}
}

// clone returns a deep copy; a nil table clones to an empty one.
func (t *Table) clone() *Table {
	out := NewTable()
	t.Each(func(code, value string) bool {
		out.Set(code, value)
		return true
	})
	return out
}
