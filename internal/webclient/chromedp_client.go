package webclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/tempusfetch/internal/logging"
)

// ChromedpClient drives one headless Chrome with a single tab. Navigate and
// Do share that tab, so API calls carry the cookies and connection
// fingerprint of the page that was loaded.
type ChromedpClient struct {
	cfg    Config
	logger logging.Logger

	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewChromedpClient launches the browser. It fails when Chrome cannot be
// started, so callers learn about a missing browser before any navigation.
func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NewStdoutLogger("webclient")
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: string(ClientChromedp)})

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser and attaches the tab.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	componentLogger.Debug("launched browser",
		logging.Field{Key: "headless", Value: cfg.Headless},
		logging.Field{Key: "idle_after", Value: cfg.IdleAfter.String()})

	return &ChromedpClient{
		cfg:         cfg,
		logger:      componentLogger,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}, nil
}

// bind derives a tab-scoped context that also ends when ctx does.
func (c *ChromedpClient) bind(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, nil, errors.New("chromedp client is closed")
	}

	runCtx, cancel := context.WithTimeout(c.tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}, nil
}

// Navigate loads pageURL, waits for network idle and reads the cookie jar.
// The whole operation is bounded by NavigationTimeout.
func (c *ChromedpClient) Navigate(ctx context.Context, pageURL string) (*Page, error) {
	navCtx, cancel, err := c.bind(ctx, c.cfg.NavigationTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	c.logger.Debug("navigating", logging.Field{Key: "url", Value: pageURL})

	watcher := waitNetworkIdle(navCtx, c.cfg.IdleAfter)
	defer watcher.stop()

	resp, err := chromedp.RunResponse(navCtx, chromedp.Navigate(pageURL))
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	watcher.arm()

	if err := watcher.Wait(navCtx); err != nil {
		return nil, fmt.Errorf("wait for network idle on %s: %w", pageURL, err)
	}

	var (
		html    string
		cookies []*network.Cookie
	)
	err = chromedp.Run(navCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("read page state: %w", err)
	}

	page := &Page{
		URL:      pageURL,
		HTML:     html,
		Cookies:  toHTTPCookies(cookies),
		LoadedAt: time.Now(),
	}
	if resp != nil {
		page.StatusCode = int(resp.Status)
	}

	c.logger.Debug("page idle",
		logging.Field{Key: "url", Value: pageURL},
		logging.Field{Key: "status", Value: page.StatusCode},
		logging.Field{Key: "cookies", Value: len(page.Cookies)})

	return page, nil
}

// fetchScript runs fetch() inside the page. Arguments are substituted as JSON
// literals.
const fetchScript = `(async (method, url, headers, body, referrer) => {
	const init = { method: method, headers: headers, credentials: "include" };
	if (referrer) { init.referrer = referrer; }
	if (body !== null) { init.body = body; }
	const res = await fetch(url, init);
	const outHeaders = {};
	res.headers.forEach((v, k) => { outHeaders[k] = v; });
	return { status: res.status, headers: outHeaders, body: await res.text() };
})(%s, %s, %s, %s, %s)`

type fetchResult struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Do issues req from inside the loaded page. Headers the browser controls
// (Referer, Origin, Sec-*, Accept-Encoding) are silently replaced by the
// browser's own values.
func (c *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	script, err := buildFetchScript(req)
	if err != nil {
		return nil, err
	}

	runCtx, cancel, err := c.bind(ctx, c.cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	method := strings.ToUpper(req.Method)
	c.logger.Debug("sending in-page request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL})

	var out fetchResult
	err = chromedp.Run(runCtx, chromedp.Evaluate(script, &out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		c.logger.Warn("in-page request failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err})
		return nil, fmt.Errorf("fetch %s %s: %w", method, req.URL, err)
	}

	headers := make(http.Header, len(out.Headers))
	for k, v := range out.Headers {
		headers.Set(k, v)
	}

	return &Response{
		Request:    req,
		Headers:    headers,
		Body:       []byte(out.Body),
		StatusCode: out.Status,
		FetchedAt:  time.Now(),
	}, nil
}

func buildFetchScript(req *Request) (string, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	headers := make(map[string]string, len(req.Headers))
	referrer := req.Referrer
	for k, vs := range req.Headers {
		if http.CanonicalHeaderKey(k) == "Referer" {
			if referrer == "" && len(vs) > 0 {
				referrer = vs[0]
			}
			continue
		}
		headers[k] = strings.Join(vs, ", ")
	}

	var body any
	if len(req.Body) > 0 {
		body = string(req.Body)
	}

	args := []any{method, req.URL, headers, body, referrer}
	lits := make([]any, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("encode fetch argument %d: %w", i, err)
		}
		lits[i] = string(b)
	}
	return fmt.Sprintf(fetchScript, lits...), nil
}

// Get is a convenience method for simple GET requests
func (c *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

// Close shuts the browser down. It is safe to call more than once.
func (c *ChromedpClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := chromedp.Cancel(c.tabCtx)
	c.tabCancel()
	c.allocCancel()
	c.logger.Debug("closed browser")
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

func toHTTPCookies(in []*network.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(in))
	for _, c := range in {
		if c == nil {
			continue
		}
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HttpOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if !c.Session && c.Expires > 0 {
			sec := int64(c.Expires)
			hc.Expires = time.Unix(sec, int64((c.Expires-float64(sec))*1e9))
		}
		out = append(out, hc)
	}
	return out
}
