// Package extract locates the list of records inside an Inertia page object
// returned by the statistics endpoint.
//
// The inner shape of props is not stable. Decode probes a fixed priority list
// of keys and reports which branch matched; when nothing matches the caller
// gets the props (or the whole envelope) back for inspection instead of an
// error.
package extract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json/jsontext"
)

// Kind tells which branch of the envelope the records came from.
type Kind string

const (
	KindResults    Kind = "results"
	KindSwimmers   Kind = "swimmers"
	KindStatistics Kind = "statistics"

	// KindNone means props exists but no probed key held a list.
	KindNone Kind = "none"

	// KindNoProps means the envelope has no props member at all.
	KindNoProps Kind = "no_props"
)

// ProbeOrder is the priority list of props keys. The first key present
// decides the branch, even if its value turns out not to be a list.
var ProbeOrder = []Kind{KindResults, KindSwimmers, KindStatistics}

// ErrNotObject is returned when the envelope is not a JSON object.
var ErrNotObject = errors.New("envelope is not a json object")

// Extraction is the outcome of Decode.
type Extraction struct {
	Kind Kind

	// Records holds the raw list elements when Found reports true.
	Records []jsontext.Value

	// List is the located array as it appeared on the wire.
	List jsontext.Value

	// Props is set for KindNone; Envelope is set for KindNoProps.
	Props    jsontext.Value
	Envelope jsontext.Value

	// Keys and PropKeys list member names in document order.
	Keys     []string
	PropKeys []string
}

// Found reports whether a record list was located.
func (x *Extraction) Found() bool {
	switch x.Kind {
	case KindResults, KindSwimmers, KindStatistics:
		return true
	default:
		return false
	}
}

// Decode runs the probe over envelope.
func Decode(envelope []byte) (*Extraction, error) {
	top, err := members(envelope)
	if err != nil {
		return nil, err
	}

	x := &Extraction{Keys: top.names()}

	props, ok := top.get("props")
	if !ok {
		x.Kind = KindNoProps
		x.Envelope = jsontext.Value(bytes.Clone(envelope))
		return x, nil
	}

	inner, err := members(props)
	if err != nil {
		// props that is not an object cannot hold any probed key
		if errors.Is(err, ErrNotObject) {
			x.Kind = KindNone
			x.Props = props
			return x, nil
		}
		return nil, fmt.Errorf("decode props: %w", err)
	}
	x.PropKeys = inner.names()

	for _, key := range ProbeOrder {
		target, ok := inner.get(string(key))
		if !ok {
			continue
		}
		target, err = unwrapData(target)
		if err != nil {
			return nil, fmt.Errorf("decode props.%s: %w", key, err)
		}
		if target.Kind() != '[' {
			break
		}
		records, err := elements(target)
		if err != nil {
			return nil, fmt.Errorf("decode props.%s: %w", key, err)
		}
		// an empty list is reported like a missing one
		if len(records) == 0 {
			break
		}
		x.Kind = key
		x.List = target
		x.Records = records
		return x, nil
	}

	x.Kind = KindNone
	x.Props = props
	return x, nil
}

// unwrapData descends one level into a paginator object {"data": [...]}.
func unwrapData(v jsontext.Value) (jsontext.Value, error) {
	if v.Kind() != '{' {
		return v, nil
	}
	obj, err := members(v)
	if err != nil {
		return nil, err
	}
	if data, ok := obj.get("data"); ok {
		return data, nil
	}
	return v, nil
}
