package webclient

import "context"

// WebClient is a single browsing session: cookies picked up by Navigate are
// sent by later Do calls on the same client.
type WebClient interface {
	// Navigate loads pageURL the way a user would and returns the rendered
	// page together with every cookie the session now holds.
	Navigate(ctx context.Context, pageURL string) (*Page, error)

	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	// Close releases the session. It is safe to call more than once.
	Close() error
}
