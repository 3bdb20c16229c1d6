package webclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raysh454/tempusfetch/internal/webclient"
)

// newChromedpClient skips the test when Chrome cannot be launched here.
func newChromedpClient(t *testing.T) *webclient.ChromedpClient {
	t.Helper()
	cfg := webclient.Config{
		NavigationTimeout: 20 * time.Second,
		IdleAfter:         200 * time.Millisecond,
		RequestTimeout:    10 * time.Second,
		Headless:          true,
	}
	client, err := webclient.NewChromedpClient(cfg, &noopLogger{})
	if err != nil {
		t.Skipf("Skipping chromedp test (environment does not support chromedp): %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestChromedpClient_NavigateThenPost(t *testing.T) {
	var gotToken, gotSession, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/swimmers":
			http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok%3D", Path: "/"})
			http.SetCookie(w, &http.Cookie{Name: "tempusopen_session", Value: "sess", Path: "/", HttpOnly: true})
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, `<html><body><div id="app" data-page="{}"></div></body></html>`)
		case r.Method == http.MethodPost && r.URL.Path == "/swimmers":
			gotToken = r.Header.Get("X-Xsrf-Token")
			if c, err := r.Cookie("tempusopen_session"); err == nil {
				gotSession = c.Value
			}
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `[{"id":1}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := newChromedpClient(t)
	ctx := context.Background()

	page, err := client.Navigate(ctx, ts.URL+"/swimmers")
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if c := page.Cookie("XSRF-TOKEN"); c == nil || c.Value != "tok%3D" {
		t.Fatalf("expected XSRF-TOKEN cookie, got %+v", c)
	}
	if c := page.Cookie("tempusopen_session"); c == nil || !c.HttpOnly {
		t.Fatalf("expected http-only session cookie, got %+v", c)
	}

	hdrs := http.Header{}
	hdrs.Set("X-Xsrf-Token", "tok=")
	hdrs.Set("Content-Type", "application/json")
	resp, err := client.Do(ctx, &webclient.Request{
		Method:   http.MethodPost,
		URL:      ts.URL + "/swimmers",
		Headers:  hdrs,
		Body:     []byte(`{"first_name":"Victor"}`),
		Referrer: ts.URL + "/swimmers",
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `[{"id":1}]` {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if gotToken != "tok=" || gotSession != "sess" || gotBody != `{"first_name":"Victor"}` {
		t.Errorf("server saw token=%q session=%q body=%q", gotToken, gotSession, gotBody)
	}
}

func TestChromedpClient_CloseIsIdempotent(t *testing.T) {
	client := newChromedpClient(t)
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := client.Navigate(context.Background(), "about:blank"); err == nil {
		t.Fatal("expected Navigate on closed client to fail")
	}
}

func TestChromedpClient_DoNilRequest(t *testing.T) {
	client := newChromedpClient(t)
	if _, err := client.Do(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}
