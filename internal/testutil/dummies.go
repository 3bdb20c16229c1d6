// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/tempusfetch/internal/logging"
	"github.com/raysh454/tempusfetch/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// Navigate returns Page (or NavigateErr). Do returns the result of Respond
// when set, otherwise status 200 with Body.
type DummyWebClient struct {
	Page        *webclient.Page
	NavigateErr error

	Body    []byte
	Respond func(req *webclient.Request) (*webclient.Response, error)

	ResponseDelay time.Duration

	mu          sync.Mutex
	Navigations []string
	Requests    []*webclient.Request
	Closed      int
}

func (d *DummyWebClient) Navigate(_ context.Context, pageURL string) (*webclient.Page, error) {
	d.mu.Lock()
	d.Navigations = append(d.Navigations, pageURL)
	d.mu.Unlock()

	if d.NavigateErr != nil {
		return nil, d.NavigateErr
	}
	if d.Page == nil {
		return &webclient.Page{URL: pageURL, StatusCode: http.StatusOK}, nil
	}
	p := *d.Page
	p.URL = pageURL
	return &p, nil
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.Respond != nil {
		return d.Respond(req)
	}
	return &webclient.Response{
		Request:    req,
		Body:       d.Body,
		StatusCode: http.StatusOK,
		Headers:    http.Header{},
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: url})
}

func (d *DummyWebClient) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed++
	return nil
}

// TokenPage returns a bootstrap page carrying both session cookies.
func TokenPage(csrf, sessionID string) *webclient.Page {
	return &webclient.Page{
		StatusCode: http.StatusOK,
		Cookies: []*http.Cookie{
			{Name: "XSRF-TOKEN", Value: csrf},
			{Name: "tempusopen_session", Value: sessionID},
		},
	}
}

// StatusResponder answers every request with status and body.
func StatusResponder(status int, body string) func(*webclient.Request) (*webclient.Response, error) {
	return func(req *webclient.Request) (*webclient.Response, error) {
		return &webclient.Response{
			Request:    req,
			Body:       []byte(body),
			StatusCode: status,
			Headers:    http.Header{},
			FetchedAt:  time.Now(),
		}, nil
	}
}
