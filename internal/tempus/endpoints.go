// Package tempus knows the Tempus Open endpoints: which page to bootstrap
// from, which URL to call, and the header set the server insists on.
package tempus

import (
	"fmt"
	"net/http"
	"strings"
)

// DefaultBaseURL is the production site.
const DefaultBaseURL = "https://www.tempusopen.se"

// Descriptor is one API call, built from constants plus a caller-supplied
// identifier or payload.
type Descriptor struct {
	Name   string
	Method string
	URL    string

	// BootstrapURL is the page visited first to obtain cookies.
	BootstrapURL string
	Referer      string

	// Body is JSON-encoded for POST requests; nil for GET.
	Body any
}

// Endpoints builds descriptors against a base URL.
type Endpoints struct {
	BaseURL string
}

func NewEndpoints(baseURL string) Endpoints {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Endpoints{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (e Endpoints) url(format string, args ...any) string {
	return e.BaseURL + fmt.Sprintf(format, args...)
}

// SearchSwimmers posts a name search to /swimmers.
func (e Endpoints) SearchSwimmers(q SearchQuery) Descriptor {
	page := e.url("/swimmers")
	return Descriptor{
		Name:         "search",
		Method:       http.MethodPost,
		URL:          page,
		BootstrapURL: page,
		Referer:      page,
		Body:         q,
	}
}

// SwimmerDetails fetches one swimmer's page object. The search page is the
// referer, as when a user clicks through from results.
func (e Endpoints) SwimmerDetails(swimmerID int) Descriptor {
	page := e.url("/swimmers/%d", swimmerID)
	return Descriptor{
		Name:         "swimmer",
		Method:       http.MethodGet,
		URL:          page,
		BootstrapURL: page,
		Referer:      e.url("/swimmers"),
	}
}

// EventDetails fetches a swimmer's history in one event. The session is set
// up from the swimmer's swimming tab, which is also the referer.
func (e Endpoints) EventDetails(swimmerID, eventID int) Descriptor {
	tab := e.url("/swimmers/%d/swimming", swimmerID)
	return Descriptor{
		Name:         "event",
		Method:       http.MethodGet,
		URL:          e.url("/swimmers/%d/events/%d", swimmerID, eventID),
		BootstrapURL: tab,
		Referer:      tab,
	}
}

// Statistics posts a ranking filter to /statistics/swimming.
func (e Endpoints) Statistics(q StatsQuery) Descriptor {
	page := e.url("/statistics/swimming")
	return Descriptor{
		Name:         "stats",
		Method:       http.MethodPost,
		URL:          page,
		BootstrapURL: page,
		Referer:      page,
		Body:         q,
	}
}
