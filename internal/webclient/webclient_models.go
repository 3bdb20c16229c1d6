package webclient

import (
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte

	// Referrer is sent as the Referer header. The browser backend cannot set
	// that header directly and passes it through fetch's referrer option.
	Referrer string
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// Page is the result of a Navigate call.
type Page struct {
	URL        string
	StatusCode int
	HTML       string
	Cookies    []*http.Cookie
	LoadedAt   time.Time
}

// Cookie returns the named cookie, or nil. When the jar holds the name more
// than once (different paths) the last one wins.
func (p *Page) Cookie(name string) *http.Cookie {
	if p == nil {
		return nil
	}
	var found *http.Cookie
	for _, c := range p.Cookies {
		if c != nil && c.Name == name {
			found = c
		}
	}
	return found
}
