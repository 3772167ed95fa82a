package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a JSON object whose field order survives a round-trip and
// whose explicit nulls stay distinguishable from absent fields. Proposals
// carry their partial edits as Documents; which fields are present is as
// meaningful as their values.
type Document struct {
	names  []string
	values map[string]Value
}

// Value is one field's raw JSON. Typed access is deferred to the consumer;
// submission stays lenient and appliers decode strictly.
type Value struct {
	raw json.RawMessage
}

func NewValue(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, err
	}
	return Value{raw: raw}, nil
}

func (v Value) Raw() json.RawMessage {
	return v.raw
}

func (v Value) IsNull() bool {
	return len(v.raw) == 0 || bytes.Equal(bytes.TrimSpace(v.raw), []byte("null"))
}

func (v Value) Decode(dst any) error {
	if len(v.raw) == 0 {
		return nil
	}
	return json.Unmarshal(v.raw, dst)
}

// AsString returns the field as a string; ok is false for non-strings and
// nulls.
func (v Value) AsString() (string, bool) {
	var s string
	if v.IsNull() || json.Unmarshal(v.raw, &s) != nil {
		return "", false
	}
	return s, true
}

func FromJSON(data []byte) (Document, error) {
	var d Document
	if err := d.UnmarshalJSON(data); err != nil {
		return Document{}, err
	}
	return d, nil
}

func MustFromJSON(data []byte) Document {
	d, err := FromJSON(data)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Document) Len() int {
	return len(d.names)
}

func (d Document) IsEmpty() bool {
	return len(d.names) == 0
}

// Names returns field names in submission order.
func (d Document) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

func (d Document) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

func (d Document) Get(name string) (Value, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Without returns a copy of the document with the given fields removed.
func (d Document) Without(names ...string) Document {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := Document{values: make(map[string]Value)}
	for _, n := range d.names {
		if _, gone := drop[n]; gone {
			continue
		}
		out.names = append(out.names, n)
		out.values[n] = d.values[n]
	}
	return out
}

// Set appends or replaces a field, keeping the original position on replace.
func (d *Document) Set(name string, value any) error {
	v, err := NewValue(value)
	if err != nil {
		return err
	}
	if d.values == nil {
		d.values = make(map[string]Value)
	}
	if _, exists := d.values[name]; !exists {
		d.names = append(d.names, name)
	}
	d.values[name] = v
	return nil
}

// Decode unmarshals the whole document into dst, typically a DTO with
// pointer fields. Pair with Has to tell explicit nulls from absent fields.
func (d Document) Decode(dst any) error {
	raw, err := d.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		raw := d.values[name].raw
		if len(raw) == 0 {
			raw = []byte("null")
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("payload must be a JSON object, got %v", tok)
	}

	d.names = nil
	d.values = make(map[string]Value)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if _, dup := d.values[key]; !dup {
			d.names = append(d.names, key)
		}
		d.values[key] = Value{raw: raw}
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
