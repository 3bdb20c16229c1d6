package webclient

import (
	"fmt"

	"github.com/raysh454/tempusfetch/internal/logging"
)

// RegisterDefaultBackends registers the chromedp and http backends.
// Call this early in main() to make them available to NewWebClient.
func RegisterDefaultBackends() {
	RegisterBackend(string(ClientHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
		client, err := NewHTTPClient(cfg, logger, nil)
		if err != nil {
			return nil, fmt.Errorf("create http client: %w", err)
		}
		return client, nil
	})

	RegisterBackend(string(ClientChromedp), func(cfg Config, logger logging.Logger) (WebClient, error) {
		client, err := NewChromedpClient(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create chromedp client: %w", err)
		}
		return client, nil
	})
}
