package resolve

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Map is an insertion-ordered object value. Response keys must appear in
// the order the client requested them, so resolution never builds a plain
// Go map; Map remembers insertion order and serializes in it.
type Map struct {
	keys   []string
	values map[string]any
}

// DuplicateKeyError reports an attempt to bind a response key twice.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate response key %q", e.Key)
}

func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set binds key to value. Binding a key that is already present fails with
// a *DuplicateKeyError and leaves the existing binding intact.
func (m *Map) Set(key string, value any) error {
	if _, exists := m.values[key]; exists {
		return &DuplicateKeyError{Key: key}
	}
	m.keys = append(m.keys, key)
	m.values[key] = value
	return nil
}

func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the bound keys in insertion order. The returned slice is
// shared with the Map and must not be mutated.
func (m *Map) Keys() []string { return m.keys }

func (m *Map) Len() int { return len(m.keys) }

// MarshalJSON writes the object with keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}
