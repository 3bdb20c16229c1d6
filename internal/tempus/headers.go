package tempus

import (
	"net/http"
	"net/url"
)

// Headers builds the header set of an in-page Inertia visit. token must
// already be percent-decoded. POST requests also get the fetch metadata a
// same-origin XHR from Chrome 143 on Windows would carry.
func Headers(method, token, inertiaVersion, referer string) http.Header {
	h := http.Header{}
	h.Set("X-Xsrf-Token", token)
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("X-Inertia", "true")
	h.Set("X-Inertia-Version", inertiaVersion)
	h.Set("Accept", "text/html, application/xhtml+xml")
	h.Set("Referer", referer)

	if method != http.MethodPost {
		return h
	}

	h.Set("Content-Type", "application/json")
	h.Set("Origin", origin(referer))
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Priority", "u=1, i")
	h.Set("Sec-Ch-Ua", `"Chromium";v="143", "Not A(Brand";v="24"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	return h
}

func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return DefaultBaseURL
	}
	return u.Scheme + "://" + u.Host
}
