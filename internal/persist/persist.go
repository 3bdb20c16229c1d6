// Package persist writes fetched JSON to disk.
//
// Output is indented with two spaces. Member order and number literals are
// kept exactly as received; string escapes are reduced to their minimal form,
// so non-ASCII text appears literally and <, > and & are left alone.
package persist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-json-experiment/json/jsontext"
)

// ErrNotArray is returned by Verify when the file does not hold a list.
var ErrNotArray = errors.New("persisted value is not a json array")

const filePerm = 0o644

// Format re-indents raw without reordering or re-encoding values.
func Format(raw []byte) ([]byte, error) {
	v := jsontext.Value(bytes.Clone(raw))
	err := v.Indent(
		jsontext.PreserveRawStrings(false),
		jsontext.EscapeForHTML(false),
		jsontext.WithIndent("  "),
	)
	if err != nil {
		return nil, fmt.Errorf("format json: %w", err)
	}
	return v, nil
}

// WriteJSON formats raw and replaces path with it. It returns the bytes
// written.
func WriteJSON(path string, raw []byte) ([]byte, error) {
	out, err := Format(raw)
	if err != nil {
		return nil, err
	}
	if err := WriteFileAtomic(path, out, filePerm); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return out, nil
}

// Verify reads path back and returns the number of elements of the
// top-level array it holds.
func Verify(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read back %s: %w", path, err)
	}

	dec := jsontext.NewDecoder(bytes.NewReader(data))
	tok, err := dec.ReadToken()
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if tok.Kind() != '[' {
		return 0, fmt.Errorf("%s: %w", path, ErrNotArray)
	}

	n := 0
	for dec.PeekKind() != ']' {
		if err := dec.SkipValue(); err != nil {
			return 0, fmt.Errorf("parse %s element %d: %w", path, n, err)
		}
		n++
	}
	if _, err := dec.ReadToken(); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("parse %s: trailing data after array", path)
	}
	return n, nil
}

// Preview formats a single value for console display. Invalid input is
// returned unchanged.
func Preview(raw []byte) string {
	out, err := Format(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
