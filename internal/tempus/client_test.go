package tempus_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raysh454/tempusfetch/internal/session"
	"github.com/raysh454/tempusfetch/internal/tempus"
	"github.com/raysh454/tempusfetch/internal/testutil"
	"github.com/raysh454/tempusfetch/internal/webclient"
)

func testSession() *session.Session {
	return &session.Session{
		Tokens:         session.TokenPair{CSRFToken: "eyJpdiI6%3D%3D", SessionID: "sess"},
		InertiaVersion: "fromPage",
	}
}

func TestCall_OK(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Body: []byte(` [{"id":1,"name":"Victor Johansson"}] `)}
	c := tempus.NewClient(wc, &testutil.DummyLogger{}, tempus.Options{})

	res, err := c.Call(context.Background(), testSession(), tempus.NewEndpoints("").SearchSwimmers(tempus.DefaultSearchQuery()))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(res.Body) != `[{"id":1,"name":"Victor Johansson"}]` {
		t.Errorf("unexpected body %s", res.Body)
	}

	if len(wc.Requests) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(wc.Requests))
	}
	req := wc.Requests[0]
	if req.Method != http.MethodPost {
		t.Errorf("expected POST, got %s", req.Method)
	}
	if got := req.Headers.Get("X-Xsrf-Token"); got != "eyJpdiI6==" {
		t.Errorf("expected decoded token, got %q", got)
	}
	if got := req.Headers.Get("X-Inertia-Version"); got != session.PinnedInertiaVersion {
		t.Errorf("expected pinned version, got %q", got)
	}
	if req.Referrer != "https://www.tempusopen.se/swimmers" {
		t.Errorf("unexpected referrer %q", req.Referrer)
	}
	if string(req.Body) != `{"first_name":"Victor","last_name":"Johansson","club":"","category":"","class":"","status":""}` {
		t.Errorf("unexpected body %s", req.Body)
	}
}

func TestCall_GetHasNoBody(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Body: []byte(`{"component":"Swimmers/Show"}`)}
	c := tempus.NewClient(wc, &testutil.DummyLogger{}, tempus.Options{})

	if _, err := c.Call(context.Background(), testSession(), tempus.NewEndpoints("").SwimmerDetails(1)); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(wc.Requests[0].Body) != 0 {
		t.Errorf("GET must not carry a body, got %s", wc.Requests[0].Body)
	}
}

func TestInertiaVersionSelection(t *testing.T) {
	t.Parallel()
	s := testSession()
	tests := []struct {
		name string
		opts tempus.Options
		s    *session.Session
		want string
	}{
		{"pinned", tempus.Options{}, s, session.PinnedInertiaVersion},
		{"override", tempus.Options{InertiaVersion: "cfg"}, s, "cfg"},
		{"detected", tempus.Options{DetectVersion: true, InertiaVersion: "cfg"}, s, "fromPage"},
		{"detect without page version", tempus.Options{DetectVersion: true}, &session.Session{}, session.PinnedInertiaVersion},
	}
	for _, tt := range tests {
		c := tempus.NewClient(nil, &testutil.DummyLogger{}, tt.opts)
		if got := c.InertiaVersion(tt.s); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCall_NonOKIsNotRetried(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Respond: testutil.StatusResponder(419, `{"message":"Page Expired"}`)}
	c := tempus.NewClient(wc, &testutil.DummyLogger{}, tempus.Options{})

	_, err := c.Call(context.Background(), testSession(), tempus.NewEndpoints("").Statistics(tempus.DefaultStatsQuery()))
	var serr *tempus.StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if serr.Code != 419 || string(serr.Body) != `{"message":"Page Expired"}` {
		t.Errorf("unexpected status error %+v", serr)
	}
	if len(wc.Requests) != 1 {
		t.Errorf("expected a single attempt, got %d", len(wc.Requests))
	}
}

func TestCall_VersionConflictCarriesLocation(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Respond: func(req *webclient.Request) (*webclient.Response, error) {
		h := http.Header{}
		h.Set("X-Inertia-Location", req.URL)
		return &webclient.Response{Request: req, StatusCode: http.StatusConflict, Headers: h}, nil
	}}
	c := tempus.NewClient(wc, &testutil.DummyLogger{}, tempus.Options{})

	_, err := c.Call(context.Background(), testSession(), tempus.NewEndpoints("").SwimmerDetails(5))
	var serr *tempus.StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if serr.Location != "https://www.tempusopen.se/swimmers/5" {
		t.Errorf("unexpected location %q", serr.Location)
	}
}

func TestCall_DecodeFailure(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Body: []byte("<html>not json</html>")}
	c := tempus.NewClient(wc, &testutil.DummyLogger{}, tempus.Options{})

	_, err := c.Call(context.Background(), testSession(), tempus.NewEndpoints("").SwimmerDetails(1))
	var derr *tempus.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if string(derr.Raw) != "<html>not json</html>" {
		t.Errorf("expected raw body preserved, got %q", derr.Raw)
	}
}

func TestCall_TransportError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	wc := &testutil.DummyWebClient{Respond: func(*webclient.Request) (*webclient.Response, error) { return nil, boom }}
	c := tempus.NewClient(wc, &testutil.DummyLogger{}, tempus.Options{})

	_, err := c.Call(context.Background(), testSession(), tempus.NewEndpoints("").SwimmerDetails(1))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

// TestCall_OverHTTPBackend runs the full header set through a real transport.
func TestCall_OverHTTPBackend(t *testing.T) {
	t.Parallel()
	var seen http.Header
	var body string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"component":"Statistics/Swimming","props":{"results":{"data":[]}}}`)
	}))
	defer ts.Close()

	wc, err := webclient.NewHTTPClient(webclient.Config{}, &testutil.DummyLogger{}, ts.Client())
	if err != nil {
		t.Fatal(err)
	}
	c := tempus.NewClient(wc, &testutil.DummyLogger{}, tempus.Options{})

	res, err := c.Call(context.Background(), testSession(), tempus.NewEndpoints(ts.URL).Statistics(tempus.DefaultStatsQuery()))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Status != 200 {
		t.Errorf("unexpected status %d", res.Status)
	}
	if seen.Get("X-Inertia") != "true" || seen.Get("X-Xsrf-Token") != "eyJpdiI6==" {
		t.Errorf("server saw headers %v", seen)
	}
	if seen.Get("Origin") != ts.URL {
		t.Errorf("expected Origin %q, got %q", ts.URL, seen.Get("Origin"))
	}
	if body == "" {
		t.Error("expected a JSON payload")
	}
}
