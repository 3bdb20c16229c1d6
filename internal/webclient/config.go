package webclient

import "time"

type Client string

const (
	ClientChromedp Client = "chromedp"
	ClientHTTP     Client = "http"
)

// DefaultUserAgent is a current desktop Chrome on Windows.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"

// Config is everything a backend constructor needs. It lives here rather than
// in app so that app can import webclient without a cycle.
type Config struct {
	Client Client `mapstructure:"client"`

	UserAgent string `mapstructure:"user_agent"`

	// NavigationTimeout bounds a whole bootstrap navigation, including the
	// wait for network idle.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`

	// IdleAfter is how long the page must have no in-flight requests before
	// it is considered idle.
	IdleAfter time.Duration `mapstructure:"idle_after"`

	// RequestTimeout bounds a single API call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	Headless   bool   `mapstructure:"headless"`
	ChromePath string `mapstructure:"chrome_path"`
}

// DefaultConfig returns the settings the browser path was tuned with.
func DefaultConfig() Config {
	return Config{
		Client:            ClientChromedp,
		UserAgent:         DefaultUserAgent,
		NavigationTimeout: 60 * time.Second,
		IdleAfter:         500 * time.Millisecond,
		RequestTimeout:    30 * time.Second,
		Headless:          true,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = def.NavigationTimeout
	}
	if c.IdleAfter <= 0 {
		c.IdleAfter = def.IdleAfter
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	return c
}
