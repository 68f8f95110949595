package configuration

import (
	"encoding/json"
	"fmt"
	"time"
)

// Default transport timeouts applied when no configuration is provided.
var (
	DefaultTimeout               = Timeout(time.Duration(0))
	DefaultTCPDialTimeout        = Timeout(time.Duration(30 * time.Second))
	DefaultTCPKeepAlive          = Timeout(time.Duration(30 * time.Second))
	DefaultTLSHandshakeTimeout   = Timeout(time.Duration(10 * time.Second))
	DefaultResponseHeaderTimeout = Timeout(time.Duration(10 * time.Second))
	DefaultIdleConnTimeout       = Timeout(time.Duration(90 * time.Second))
)

// Timeout wraps time.Duration to support JSON/YAML marshaling
// of human-readable duration strings (e.g. "30s", "5m", "1h").
// Use as a pointer (*Timeout) in config structs so that nil means "not set"
// and a zero value means "explicitly disabled".
type Timeout time.Duration

// NewTimeout creates a pointer to a Timeout set to the given time.Duration.
func NewTimeout(d time.Duration) *Timeout {
	v := Timeout(d)
	return &v
}

// Value returns the underlying time.Duration.
// Returns 0 when called on a nil pointer.
func (d *Timeout) Value() time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(*d)
}

func (d Timeout) String() string {
	return time.Duration(d).String()
}

func (d Timeout) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Timeout) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("failed to parse HTTP client timeout: %w", err)
	}

	switch value := v.(type) {
	case float64:
		*d = Timeout(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout value %q: must be a duration like 30s, 5m, or nanoseconds number: %w", value, err)
		}
		*d = Timeout(tmp)
		return nil
	default:
		return fmt.Errorf("timeout must be a duration string or nanoseconds number, got %T", v)
	}
}

// HTTP configures the client used for remote repositories.
type HTTP struct {
	// Timeout limits a whole request including reading the body. Disabled if not set.
	Timeout *Timeout `json:"timeout,omitempty"`
	// ResponseHeaderTimeout defaults to 10s.
	ResponseHeaderTimeout *Timeout `json:"responseHeaderTimeout,omitempty"`
	// IdleConnTimeout defaults to 90s.
	IdleConnTimeout *Timeout `json:"idleConnTimeout,omitempty"`
	// TCPDialTimeout defaults to 30s.
	TCPDialTimeout *Timeout `json:"tcpDialTimeout,omitempty"`
	// TCPKeepAlive defaults to 30s.
	TCPKeepAlive *Timeout `json:"tcpKeepAlive,omitempty"`
	// TLSHandshakeTimeout defaults to 10s.
	TLSHandshakeTimeout *Timeout `json:"tlsHandshakeTimeout,omitempty"`
	// UserAgent is sent with every request.
	UserAgent string `json:"userAgent,omitempty"`
}

// DefaultHTTP returns the default transport settings.
func DefaultHTTP() *HTTP {
	return &HTTP{
		Timeout:               &DefaultTimeout,
		TCPDialTimeout:        &DefaultTCPDialTimeout,
		TCPKeepAlive:          &DefaultTCPKeepAlive,
		TLSHandshakeTimeout:   &DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: &DefaultResponseHeaderTimeout,
		IdleConnTimeout:       &DefaultIdleConnTimeout,
	}
}

// MergeHTTP merges the provided configs into a single config.
// The last explicitly set value wins, nil configs are skipped.
func MergeHTTP(configs ...*HTTP) *HTTP {
	merged := new(HTTP)
	for _, config := range configs {
		if config == nil {
			continue
		}
		if config.Timeout != nil {
			merged.Timeout = config.Timeout
		}
		if config.TCPDialTimeout != nil {
			merged.TCPDialTimeout = config.TCPDialTimeout
		}
		if config.TCPKeepAlive != nil {
			merged.TCPKeepAlive = config.TCPKeepAlive
		}
		if config.TLSHandshakeTimeout != nil {
			merged.TLSHandshakeTimeout = config.TLSHandshakeTimeout
		}
		if config.ResponseHeaderTimeout != nil {
			merged.ResponseHeaderTimeout = config.ResponseHeaderTimeout
		}
		if config.IdleConnTimeout != nil {
			merged.IdleConnTimeout = config.IdleConnTimeout
		}
		if config.UserAgent != "" {
			merged.UserAgent = config.UserAgent
		}
	}
	return merged
}
