package webclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"

	"github.com/raysh454/tempusfetch/internal/logging"
)

// HTTPClient is the browserless backend: a resty client with its own
// cookie jar. It only works against sites that set their session cookies on
// a plain GET.
type HTTPClient struct {
	client *resty.Client
	jar    http.CookieJar
	logger logging.Logger
	ua     string
}

// NewHTTPClient builds the backend. httpClient may be nil; when given it is
// used as-is except for its cookie jar, which is replaced when missing.
func NewHTTPClient(cfg Config, logger logging.Logger, httpClient *http.Client) (*HTTPClient, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NewStdoutLogger("webclient")
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: string(ClientHTTP)})

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	jar := httpClient.Jar
	if jar == nil {
		var err error
		jar, err = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
	}

	rc := resty.NewWithClient(httpClient).
		SetCookieJar(jar).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRetryCount(0)

	componentLogger.Debug("created http webclient",
		logging.Field{Key: "timeout", Value: httpClient.Timeout.String()})

	return &HTTPClient{
		client: rc,
		jar:    jar,
		logger: componentLogger,
		ua:     cfg.UserAgent,
	}, nil
}

// Navigate GETs pageURL with document-style headers and returns the body
// together with the jar's cookies for that URL.
func (h *HTTPClient) Navigate(ctx context.Context, pageURL string) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	h.logger.Debug("navigating", logging.Field{Key: "url", Value: pageURL})

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	return &Page{
		URL:        pageURL,
		StatusCode: resp.StatusCode(),
		HTML:       string(resp.Body()),
		Cookies:    h.jar.Cookies(u),
		LoadedAt:   time.Now(),
	}, nil
}

// Do implements the generic request execution.
func (h *HTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	h.logger.Debug("sending http request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL})

	r := h.client.R().SetContext(ctx)
	for k, vs := range req.Headers {
		// the transport negotiates compression itself and only decodes what it asked for
		if http.CanonicalHeaderKey(k) == "Accept-Encoding" {
			continue
		}
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if req.Referrer != "" && r.Header.Get("Referer") == "" {
		r.SetHeader("Referer", req.Referrer)
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(method, req.URL)
	if err != nil {
		h.logger.Warn("http request failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err})
		return nil, fmt.Errorf("http do: %w", err)
	}

	return &Response{
		Request:    req,
		Body:       resp.Body(),
		Headers:    resp.Header(),
		StatusCode: resp.StatusCode(),
		FetchedAt:  time.Now(),
	}, nil
}

// Get is a convenience method for simple GET requests
func (h *HTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	return h.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (h *HTTPClient) Close() error {
	h.logger.Debug("closing http webclient")
	return nil
}

// Cookies returns the jar's cookies for rawURL.
func (h *HTTPClient) Cookies(rawURL string) ([]*http.Cookie, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	return h.jar.Cookies(u), nil
}
