// Package post implements the blog post record. A post is a JSON object with
// an "id" field plus whatever fields clients choose to send. Objects, at any
// depth, are serialized with integer-like names first, in ascending order,
// then all other names in insertion order. Numbers are stored in their
// shortest form.
package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// IDField is the name of the field holding a post's identifier.
const IDField = "id"

type field struct {
	name  string
	value json.RawMessage
}

// Post is a JSON object with ordered fields. The zero value is an empty object.
type Post struct {
	fields []field
}

// Set stores value under name. An existing field keeps its position, a new
// field is appended.
func (p *Post) Set(name string, value json.RawMessage) {
	for i := range p.fields {
		if p.fields[i].name == name {
			p.fields[i].value = value
			return
		}
	}
	p.fields = append(p.fields, field{name: name, value: value})
}

// Get returns the raw value stored under name.
func (p Post) Get(name string) (value json.RawMessage, ok bool) {
	for _, f := range p.fields {
		if f.name == name {
			return f.value, true
		}
	}
	return nil, false
}

// Len returns the number of fields.
func (p Post) Len() int {
	return len(p.fields)
}

// Names returns the field names in serialization order.
func (p Post) Names() []string {
	ordered := p.ordered()
	names := make([]string, len(ordered))
	for i, f := range ordered {
		names[i] = f.name
	}
	return names
}

// ID returns the numeric value of the id field. The second return value is
// false if the field is missing or is not a JSON number.
func (p Post) ID() (float64, bool) {
	raw, ok := p.Get(IDField)
	if !ok {
		return 0, false
	}
	return number(raw)
}

// HasID reports whether the post's id is a number equal to id. A NaN id never
// matches.
func (p Post) HasID(id float64) bool {
	got, ok := p.ID()
	return ok && got == id
}

// IDNumber returns the id converted by ToNumber. A missing id is NaN.
func (p Post) IDNumber() float64 {
	raw, ok := p.Get(IDField)
	if !ok {
		return math.NaN()
	}
	return ToNumber(raw)
}

// SetID stores id as the post's id field.
func (p *Post) SetID(id float64) {
	p.Set(IDField, FormatNumber(id))
}

// Merge copies every field of other into p, other winning per field.
func (p *Post) Merge(other Post) {
	for _, f := range other.fields {
		p.Set(f.name, f.value)
	}
}

// Clone returns a copy of p that shares no field storage with it.
func (p Post) Clone() Post {
	c := Post{fields: make([]field, len(p.fields))}
	for i, f := range p.fields {
		c.fields[i] = field{name: f.name, value: append(json.RawMessage(nil), f.value...)}
	}
	return c
}

// WithID returns a new post made of the given id followed by the fields of
// body. An id field in body overrides the given one.
func WithID(id float64, body Post) Post {
	var p Post
	p.SetID(id)
	p.Merge(body)
	return p
}

// MarshalJSON implements json.Marshaler.
func (p Post) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p.ordered() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := Marshal(f.name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Only JSON objects are accepted.
// Duplicate names keep the position of their first occurrence and the value of
// their last. Nested values are normalized the same way.
func (p *Post) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("post: want a JSON object, got %.40s", data)
	}
	obj, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*p = obj
	return nil
}

// normalize re-encodes a JSON value: object names ordered and deduplicated,
// numbers in their shortest form, strings without HTML escaping.
func normalize(raw json.RawMessage) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var buf bytes.Buffer
	if err := normalizeValue(dec, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func normalizeValue(dec *json.Decoder, buf *bytes.Buffer) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			obj, err := decodeObject(dec)
			if err != nil {
				return err
			}
			b, err := obj.MarshalJSON()
			if err != nil {
				return err
			}
			buf.Write(b)
		case '[':
			buf.WriteByte('[')
			for i := 0; dec.More(); i++ {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := normalizeValue(dec, buf); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			buf.WriteByte(']')
		default:
			return fmt.Errorf("post: unexpected delimiter %v", v)
		}
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return err
		}
		buf.Write(FormatNumber(f))
	case string:
		b, err := Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case nil:
		buf.WriteString("null")
	}
	return nil
}

// decodeObject reads the members of an object whose opening brace has been
// consumed, and the closing brace.
func decodeObject(dec *json.Decoder) (Post, error) {
	var p Post
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Post{}, err
		}
		name, ok := tok.(string)
		if !ok {
			return Post{}, fmt.Errorf("post: unexpected token %v", tok)
		}
		var value bytes.Buffer
		if err := normalizeValue(dec, &value); err != nil {
			return Post{}, fmt.Errorf("post: field %q: %w", name, err)
		}
		p.Set(name, value.Bytes())
	}
	if _, err := dec.Token(); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (p Post) ordered() []field {
	out := make([]field, len(p.fields))
	copy(out, p.fields)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := arrayIndex(out[i].name)
		b, bok := arrayIndex(out[j].name)
		if aok && bok {
			return a < b
		}
		return aok && !bok
	})
	return out
}

// arrayIndex reports whether name is the canonical decimal form of an integer
// in [0, 2^32-2].
func arrayIndex(name string) (uint64, bool) {
	if name == "" || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(name, 10, 64)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return n, true
}
