package extract

import (
	"bytes"
	"fmt"

	"github.com/go-json-experiment/json/jsontext"
)

type member struct {
	name  string
	value jsontext.Value
}

type object []member

func (o object) names() []string {
	out := make([]string, len(o))
	for i, m := range o {
		out[i] = m.name
	}
	return out
}

// get returns the last member called name, matching how a decoder into a map
// resolves duplicates.
func (o object) get(name string) (jsontext.Value, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].name == name {
			return o[i].value, true
		}
	}
	return nil, false
}

// decodeOpts accept what persist.Format accepts, so a body that can be
// written can also be searched for a record list.
var decodeOpts = []jsontext.Options{
	jsontext.AllowDuplicateNames(true),
	jsontext.AllowInvalidUTF8(true),
}

// members reads the top level of a JSON object in document order.
func members(raw []byte) (object, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(raw), decodeOpts...)

	tok, err := dec.ReadToken()
	if err != nil {
		return nil, fmt.Errorf("read envelope: %w", err)
	}
	if tok.Kind() != '{' {
		return nil, ErrNotObject
	}

	var out object
	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return nil, fmt.Errorf("read member name: %w", err)
		}
		key := name.String()
		val, err := dec.ReadValue()
		if err != nil {
			return nil, fmt.Errorf("read member %q: %w", key, err)
		}
		out = append(out, member{name: key, value: val.Clone()})
	}
	if _, err := dec.ReadToken(); err != nil {
		return nil, fmt.Errorf("read envelope end: %w", err)
	}
	return out, nil
}

// elements splits a JSON array into its raw elements.
func elements(raw jsontext.Value) ([]jsontext.Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(raw), decodeOpts...)
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}
	out := []jsontext.Value{}
	for dec.PeekKind() != ']' {
		v, err := dec.ReadValue()
		if err != nil {
			return nil, fmt.Errorf("read element %d: %w", len(out), err)
		}
		out = append(out, v.Clone())
	}
	return out, nil
}
