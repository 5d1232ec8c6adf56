package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// IDField is the key that carries a record's identifier in serialized form.
const IDField = "id"

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindAbsent ValueKind = iota
	KindNumber
	KindText
)

// Value is a scalar field value: a number, a string, or nothing.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Text(s string) Value    { return Value{kind: KindText, text: s} }
func Absent() Value          { return Value{} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNumber() bool  { return v.kind == KindNumber }
func (v Value) IsAbsent() bool  { return v.kind == KindAbsent }

// Float returns the numeric payload; ok is false for non-numbers.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Str returns the text payload; ok is false for non-text values.
func (v Value) Str() (string, bool) {
	return v.text, v.kind == KindText
}

// Equal is strict: kinds must agree, there is no coercion between 0 and "0".
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, err := valueFromJSON(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func valueFromJSON(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Absent(), nil
	case float64:
		return Number(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return Number(f), nil
	case string:
		return Text(t), nil
	default:
		return Value{}, fmt.Errorf("unsupported field value of type %T", raw)
	}
}

// Field is one named value of a record.
type Field struct {
	Name  string
	Value Value
}

// Record is one row from either system. Field order is significant: it is
// the order in which fields are compared.
type Record struct {
	ID     string
	Fields []Field
}

// NewRecord builds a record from its identifier and ordered fields.
// A repeated name keeps its first position and takes the last value.
func NewRecord(id string, fields ...Field) Record {
	r := Record{ID: id}
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set replaces the value of the named field in place, or appends the field.
func (r *Record) Set(name string, v Value) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = v
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: v})
}

// F is shorthand for constructing a Field.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Get returns the value of the named field. Missing fields read as absent.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Absent(), false
}

func (r Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// FieldNames lists field names in record order, excluding the identifier.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		if f.Name == IDField {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

// MarshalJSON writes the record as a flat object with "id" first.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	key, _ := json.Marshal(IDField)
	id, _ := json.Marshal(r.ID)
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(id)
	for _, f := range r.Fields {
		if f.Name == IDField {
			continue
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object, keeping the key order of the input.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	var out Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		if name == IDField {
			switch id := raw.(type) {
			case string:
				out.ID = id
			case json.Number:
				out.ID = id.String()
			default:
				return fmt.Errorf("record id must be a string or number, got %T", raw)
			}
			continue
		}
		val, err := valueFromJSON(raw)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		out.Set(name, val)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
