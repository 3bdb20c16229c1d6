// Package session turns a bootstrap page load into the token pair the
// site's AJAX endpoints expect.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/raysh454/tempusfetch/internal/logging"
	"github.com/raysh454/tempusfetch/internal/webclient"
)

const (
	CSRFCookie    = "XSRF-TOKEN"
	SessionCookie = "tempusopen_session"
)

// ErrTokensNotFound means the bootstrap page did not leave both cookies in
// the jar. It is terminal for a run.
var ErrTokensNotFound = errors.New("session tokens not found")

// TokenPair holds the raw cookie values.
type TokenPair struct {
	CSRFToken string
	SessionID string
}

// Session is what a successful bootstrap yields.
type Session struct {
	Tokens  TokenPair
	PageURL string

	// InertiaVersion is the asset version announced by the page, empty when
	// the page carried none.
	InertiaVersion string
}

// HeaderToken returns the CSRF token in the form the X-Xsrf-Token header
// expects.
func (s *Session) HeaderToken() string {
	return DecodeToken(s.Tokens.CSRFToken)
}

// Bootstrapper loads a page and harvests its session cookies.
type Bootstrapper struct {
	wc     webclient.WebClient
	logger logging.Logger
}

func NewBootstrapper(wc webclient.WebClient, logger logging.Logger) *Bootstrapper {
	if logger == nil {
		logger = logging.NewStdoutLogger("session")
	}
	return &Bootstrapper{wc: wc, logger: logger.With(logging.Field{Key: "component", Value: "session"})}
}

// Bootstrap navigates to pageURL and returns the token pair. When either
// cookie is missing it returns an error wrapping ErrTokensNotFound; it does
// not retry.
func (b *Bootstrapper) Bootstrap(ctx context.Context, pageURL string) (*Session, error) {
	if b.wc == nil {
		return nil, errors.New("session: webclient is nil")
	}

	b.logger.Info("fetching bootstrap page for tokens", logging.Field{Key: "url", Value: pageURL})

	page, err := b.wc.Navigate(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap %s: %w", pageURL, err)
	}

	tokens, err := Extract(page)
	if err != nil {
		b.logger.Error("failed to find tokens; the site might be blocking or its structure has changed",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "status", Value: page.StatusCode},
			logging.Field{Key: "error", Value: err})
		return nil, err
	}

	b.logger.Info("tokens found",
		logging.Field{Key: "xsrf", Value: Preview(tokens.CSRFToken)},
		logging.Field{Key: "session", Value: Preview(tokens.SessionID)})

	s := &Session{Tokens: tokens, PageURL: pageURL}
	if v, err := InertiaVersion(page.HTML); err == nil {
		s.InertiaVersion = v
	} else {
		b.logger.Debug("no inertia version on bootstrap page", logging.Field{Key: "error", Value: err})
	}
	return s, nil
}

// Extract pulls both cookies out of page. Empty values count as missing.
func Extract(page *webclient.Page) (TokenPair, error) {
	var missing []string
	var tp TokenPair

	if c := page.Cookie(CSRFCookie); c != nil && c.Value != "" {
		tp.CSRFToken = c.Value
	} else {
		missing = append(missing, CSRFCookie)
	}
	if c := page.Cookie(SessionCookie); c != nil && c.Value != "" {
		tp.SessionID = c.Value
	} else {
		missing = append(missing, SessionCookie)
	}

	if len(missing) > 0 {
		return TokenPair{}, fmt.Errorf("%w: missing %s", ErrTokensNotFound, strings.Join(missing, ", "))
	}
	return tp, nil
}

// DecodeToken percent-decodes a cookie value. '+' is kept literally and a
// '%' not followed by two hex digits passes through unchanged.
func DecodeToken(raw string) string {
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]) {
			b.WriteByte(unhex(raw[i+1])<<4 | unhex(raw[i+2]))
			i += 2
			continue
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c <= 'F':
		return c - 'A' + 10
	default:
		return c - 'a' + 10
	}
}

// EncodeToken is the inverse of DecodeToken.
func EncodeToken(s string) string {
	return url.PathEscape(s)
}

// Preview shortens a secret for logging.
func Preview(s string) string {
	const n = 15
	if len(s) <= n {
		return s + "..."
	}
	return s[:n] + "..."
}
