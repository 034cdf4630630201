package post

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Result is the body of a successful mutation response.
type Result struct {
	Message string `json:"message"`
	Post    Post   `json:"post"`
}

// Marshal encodes v as compact JSON without escaping HTML characters.
func Marshal(v interface{}) ([]byte, error) {
	return encode(v, "")
}

// MarshalIndent encodes v as JSON indented by two spaces per level, without
// escaping HTML characters. Used for the persisted image of the collection.
func MarshalIndent(v interface{}) ([]byte, error) {
	return encode(v, "  ")
}

func encode(v interface{}, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Parse decodes a request body and spreads it into a post: the fields of an
// object, the elements of an array under their indices, the characters of a
// string under their indices. Other JSON values yield an empty post. Malformed
// JSON, including an empty body, is an error.
func Parse(body []byte) (Post, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Post{}, fmt.Errorf("post: parsing body: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	var p Post
	switch raw[0] {
	case '{':
		if err := json.Unmarshal(raw, &p); err != nil {
			return Post{}, err
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Post{}, err
		}
		for i, item := range items {
			value, err := normalize(item)
			if err != nil {
				return Post{}, err
			}
			p.Set(strconv.Itoa(i), value)
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Post{}, err
		}
		i := 0
		for _, r := range s {
			char, err := Marshal(string(r))
			if err != nil {
				return Post{}, err
			}
			p.Set(strconv.Itoa(i), char)
			i++
		}
	}
	return p, nil
}

// ParseList decodes a JSON array of posts.
func ParseList(data []byte) ([]Post, error) {
	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}
