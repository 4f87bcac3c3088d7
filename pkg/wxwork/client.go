package wxwork

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/wxnotify/internal/api"
	"github.com/bft-labs/wxnotify/pkg/cache"
	"github.com/bft-labs/wxnotify/pkg/log"
)

const (
	// DefaultBaseURL is the public WeCom API host.
	DefaultBaseURL = api.DefaultBaseURL

	// DefaultTokenTTL is how long a fetched access token is cached. It
	// matches the platform's 7200 second token lifetime.
	DefaultTokenTTL = 2 * time.Hour

	// DefaultHTTPTimeout bounds each request made by the default HTTP client.
	DefaultHTTPTimeout = 15 * time.Second
)

// HTTPClient abstracts HTTP request execution for testing and custom transports.
// The standard *http.Client satisfies this interface.
type HTTPClient = api.HTTPClient

// Client holds the long-lived collaborators of the send pipeline: the
// endpoint client, the token provider and the media uploader. A Client is
// safe for concurrent use; the Senders it creates are not.
type Client struct {
	api    *api.Client
	tokens *TokenProvider
	media  *MediaUploader
	logger log.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient HTTPClient
	logger     log.Logger
	baseURL    string
	cache      *cache.Cache
	now        func() time.Time
	tokenTTL   time.Duration
	boundary   func() string
}

// WithHTTPClient sets the HTTP client used for all platform calls.
func WithHTTPClient(c HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger. Without it the client logs nothing.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBaseURL overrides the API host, e.g. for a proxy or a test server.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithCache sets the credential cache. The default is cache.Shared(), so
// that every client in the process reuses tokens for the same credentials.
func WithCache(c *cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithClock overrides the time source used to compute token expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTokenTTL overrides how long fetched tokens are cached.
func WithTokenTTL(d time.Duration) Option {
	return func(o *options) { o.tokenTTL = d }
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	o := options{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     log.NewNoopLogger(),
		baseURL:    DefaultBaseURL,
		cache:      cache.Shared(),
		now:        time.Now,
		tokenTTL:   DefaultTokenTTL,
		boundary:   newBoundary,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}

	endpoints := api.New(o.baseURL, o.httpClient, o.logger)
	tokens := &TokenProvider{
		cache:  o.cache,
		source: endpoints,
		ttl:    o.tokenTTL,
		now:    o.now,
		logger: o.logger,
	}
	return &Client{
		api:    endpoints,
		tokens: tokens,
		media: &MediaUploader{
			tokens:   tokens,
			source:   endpoints,
			boundary: o.boundary,
			logger:   o.logger,
		},
		logger: o.logger,
	}
}

// NewSender returns an unconfigured Sender bound to c.
func (c *Client) NewSender() *Sender {
	return &Sender{client: c}
}

// Tokens returns the client's token provider.
func (c *Client) Tokens() *TokenProvider {
	return c.tokens
}

// Media returns the client's media uploader.
func (c *Client) Media() *MediaUploader {
	return c.media
}

// newBoundary returns a multipart boundary that is unique per call.
func newBoundary() string {
	return "----WXNotifyFormBoundary" + uuid.New().String()
}
