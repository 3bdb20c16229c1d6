package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

func newBufferLogger(component string) (*StdoutLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &StdoutLogger{component: component, out: buf, mu: &sync.Mutex{}}, buf
}

func decodeLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(b), &m); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
	return m
}

func TestStdoutLogger_WritesJSONLine(t *testing.T) {
	t.Parallel()
	l, buf := newBufferLogger("session")

	l.Warn("tokens missing", Field{Key: "url", Value: "https://example.test"}, Field{Key: "error", Value: errors.New("boom")})

	m := decodeLine(t, buf.Bytes())
	if m["level"] != "warn" || m["msg"] != "tokens missing" || m["component"] != "session" {
		t.Errorf("unexpected entry %v", m)
	}
	fields, _ := m["fields"].(map[string]any)
	if fields["url"] != "https://example.test" {
		t.Errorf("expected url field, got %v", fields)
	}
	if fields["error"] != "boom" {
		t.Errorf("expected error rendered as string, got %v", fields["error"])
	}
}

func TestStdoutLogger_WithComponentAndFields(t *testing.T) {
	t.Parallel()
	l, buf := newBufferLogger("app")

	child := l.With(Field{Key: "component", Value: "tempus"}, Field{Key: "job", Value: "stats"})
	child.Info("request sent", Field{Key: "status", Value: 200})

	m := decodeLine(t, buf.Bytes())
	if m["component"] != "tempus" {
		t.Errorf("expected component replaced, got %v", m["component"])
	}
	fields, _ := m["fields"].(map[string]any)
	if fields["job"] != "stats" || fields["status"] != float64(200) {
		t.Errorf("expected inherited and call fields, got %v", fields)
	}
	if _, ok := fields["component"]; ok {
		t.Errorf("component should not be repeated as a field")
	}

	buf.Reset()
	l.Info("parent")
	if m := decodeLine(t, buf.Bytes()); m["component"] != "app" || m["fields"] != nil {
		t.Errorf("parent logger changed by With: %v", m)
	}
}
