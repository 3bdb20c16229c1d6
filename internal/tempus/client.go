package tempus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/raysh454/tempusfetch/internal/logging"
	"github.com/raysh454/tempusfetch/internal/session"
	"github.com/raysh454/tempusfetch/internal/webclient"
)

// Options tune how Client builds requests.
type Options struct {
	// InertiaVersion overrides the pinned asset version.
	InertiaVersion string `mapstructure:"inertia_version"`

	// DetectVersion prefers the version found on the bootstrap page.
	DetectVersion bool `mapstructure:"detect_version"`
}

// Client issues exactly one call per Call invocation; it never retries.
type Client struct {
	wc     webclient.WebClient
	logger logging.Logger
	opts   Options
}

func NewClient(wc webclient.WebClient, logger logging.Logger, opts Options) *Client {
	if logger == nil {
		logger = logging.NewStdoutLogger("tempus")
	}
	return &Client{
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "tempus"}),
		opts:   opts,
	}
}

// Result is a 200 answer whose body parsed as JSON.
type Result struct {
	Status    int
	Body      json.RawMessage
	Headers   http.Header
	FetchedAt time.Time
}

// InertiaVersion picks the version header value for s.
func (c *Client) InertiaVersion(s *session.Session) string {
	if c.opts.DetectVersion && s != nil && s.InertiaVersion != "" {
		return s.InertiaVersion
	}
	if c.opts.InertiaVersion != "" {
		return c.opts.InertiaVersion
	}
	return session.PinnedInertiaVersion
}

// Request turns d into a transport request carrying s's token.
func (c *Client) Request(s *session.Session, d Descriptor) (*webclient.Request, error) {
	if s == nil {
		return nil, errors.New("tempus: nil session")
	}
	token := s.HeaderToken()

	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	req := &webclient.Request{
		Method:   method,
		URL:      d.URL,
		Headers:  Headers(method, token, c.InertiaVersion(s), d.Referer),
		Referrer: d.Referer,
	}

	if method == http.MethodPost && d.Body != nil {
		body, err := json.Marshal(d.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", d.Name, err)
		}
		req.Body = body
	}
	return req, nil
}

// Call performs d once. A non-200 status yields *StatusError and a 200 with
// a non-JSON body yields *DecodeError; both carry the raw body.
func (c *Client) Call(ctx context.Context, s *session.Session, d Descriptor) (*Result, error) {
	if c.wc == nil {
		return nil, errors.New("tempus: webclient is nil")
	}
	req, err := c.Request(s, d)
	if err != nil {
		return nil, err
	}

	c.logger.Info("sending request",
		logging.Field{Key: "endpoint", Value: d.Name},
		logging.Field{Key: "method", Value: req.Method},
		logging.Field{Key: "url", Value: req.URL})

	resp, err := c.wc.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", d.Name, err)
	}

	if resp.StatusCode != http.StatusOK {
		serr := &StatusError{Code: resp.StatusCode, Body: resp.Body}
		if resp.Headers != nil {
			serr.Location = resp.Headers.Get("X-Inertia-Location")
		}
		c.logger.Error("request failed",
			logging.Field{Key: "endpoint", Value: d.Name},
			logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, serr
	}

	body := bytes.TrimSpace(resp.Body)
	if !json.Valid(body) {
		var probe any
		derr := json.Unmarshal(body, &probe)
		if derr == nil {
			derr = errors.New("invalid json")
		}
		c.logger.Error("failed to decode json",
			logging.Field{Key: "endpoint", Value: d.Name},
			logging.Field{Key: "bytes", Value: len(resp.Body)})
		return nil, &DecodeError{Raw: resp.Body, Err: derr}
	}

	c.logger.Info("json object received",
		logging.Field{Key: "endpoint", Value: d.Name},
		logging.Field{Key: "bytes", Value: len(body)})

	return &Result{
		Status:    resp.StatusCode,
		Body:      json.RawMessage(body),
		Headers:   resp.Headers,
		FetchedAt: resp.FetchedAt,
	}, nil
}
