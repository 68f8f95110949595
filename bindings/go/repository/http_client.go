package repository

import (
	"net"
	"net/http"

	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/uklance/gradle-dependency-export/bindings/go/configuration"
)

const defaultUserAgent = "pomresolve"

// HTTPClientOptions holds configuration for creating an HTTP client.
type HTTPClientOptions struct {
	config    *configuration.HTTP
	userAgent string
}

// HTTPClientOption is a functional option for NewHTTPClient.
type HTTPClientOption func(*HTTPClientOptions)

// WithHTTPConfig sets the HTTP configuration (timeouts, user agent).
func WithHTTPConfig(cfg *configuration.HTTP) HTTPClientOption {
	return func(o *HTTPClientOptions) {
		o.config = cfg
	}
}

// WithHTTPUserAgent sets the User-Agent header for HTTP requests.
// It takes precedence over the user agent of the HTTP configuration.
func WithHTTPUserAgent(userAgent string) HTTPClientOption {
	return func(o *HTTPClientOptions) {
		o.userAgent = userAgent
	}
}

// userAgentTransport wraps an http.RoundTripper and injects a User-Agent header.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// NewHTTPClient creates the client used by remote repositories. Requests failing
// with transient errors (connection errors, 429, 5xx) are retried with backoff.
func NewHTTPClient(opts ...HTTPClientOption) *http.Client {
	options := &HTTPClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	baseTransport := retry.DefaultClient.Transport

	if options.config != nil {
		transport := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   options.config.TCPDialTimeout.Value(),
				KeepAlive: options.config.TCPKeepAlive.Value(),
			}).DialContext,
			TLSHandshakeTimeout:   options.config.TLSHandshakeTimeout.Value(),
			ResponseHeaderTimeout: options.config.ResponseHeaderTimeout.Value(),
			IdleConnTimeout:       options.config.IdleConnTimeout.Value(),
		}
		baseTransport = retry.NewTransport(transport)
	}

	userAgent := defaultUserAgent
	if options.config != nil && options.config.UserAgent != "" {
		userAgent = options.config.UserAgent
	}
	if options.userAgent != "" {
		userAgent = options.userAgent
	}

	httpClient := &http.Client{
		Transport: &userAgentTransport{
			base:      baseTransport,
			userAgent: userAgent,
		},
	}

	if options.config != nil {
		httpClient.Timeout = options.config.Timeout.Value()
	}

	return httpClient
}
