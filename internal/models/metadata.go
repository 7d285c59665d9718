package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Metadata is an ordered string-to-string mapping with unique keys.
// Keys keep insertion order through JSON and database round trips.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata builds Metadata from alternating key/value arguments.
// A trailing key without a value is ignored.
func NewMetadata(pairs ...string) Metadata {
	var m Metadata
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// Set stores value under key. An existing key keeps its position.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m Metadata) Len() int {
	return len(m.keys)
}

// Keys returns the keys in order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in key order.
func (m Metadata) Values() []string {
	out := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object preserving key order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object in document order. Scalar values are
// stored as their string form; null becomes an empty string.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	*m = Metadata{}
	if !gjson.ValidBytes(data) {
		return errors.New("metadata: invalid JSON")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return nil
	}
	if !strings.HasPrefix(strings.TrimSpace(res.Raw), "{") {
		return errors.New("metadata: must be a JSON object")
	}

	var decodeErr error
	res.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.JSON {
			decodeErr = fmt.Errorf("metadata: value for %q must be a scalar", key.String())
			return false
		}
		m.Set(key.String(), value.String())
		return true
	})
	return decodeErr
}

// Value implements driver.Valuer for database storage
func (m Metadata) Value() (driver.Value, error) {
	return m.MarshalJSON()
}

// Scan implements sql.Scanner for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return m.UnmarshalJSON(v)
	case string:
		return m.UnmarshalJSON([]byte(v))
	default:
		return errors.New("failed to scan Metadata")
	}
}
