package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// HostHeaders are injected into every request to a matching host.
type HostHeaders struct {
	Headers   map[string]string
	Cookie    string
	Referer   string
	UserAgent string
}

// Options configures NewHTTPClient.
type Options struct {
	// Timeout bounds a whole request including the body. 0 means none.
	Timeout time.Duration

	// ProxyAddress routes all connections through a SOCKS5 proxy when set.
	ProxyAddress string

	// Hosts maps a host name to the headers its requests get. A key also
	// matches its subdomains.
	Hosts map[string]HostHeaders

	// Defaults apply to hosts without an entry in Hosts.
	Defaults HostHeaders
}

func (h HostHeaders) empty() bool {
	return len(h.Headers) == 0 && h.Cookie == "" && h.Referer == "" && h.UserAgent == ""
}

// NewHTTPClient creates the client used for tile fetching.
func NewHTTPClient(opts Options) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if opts.ProxyAddress != "" {
		if !ValidProxyAddress(opts.ProxyAddress) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, opts.ProxyAddress)
		}
		// Tor and most SOCKS proxies need no auth.
		dialer, err := proxy.SOCKS5("tcp", opts.ProxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	var rt http.RoundTripper = transport
	if len(opts.Hosts) > 0 || !opts.Defaults.empty() {
		rt = &headerInjectingTransport{base: transport, hosts: opts.Hosts, defaults: opts.Defaults}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// ValidProxyAddress reports whether address is "host:port" with a port in 1..65535.
func ValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// per-host headers and cookies into every request.
type headerInjectingTransport struct {
	base     http.RoundTripper
	hosts    map[string]HostHeaders
	defaults HostHeaders
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	h, ok := t.match(req.URL.Hostname())
	if !ok {
		h = t.defaults
	}
	if h.empty() {
		return t.base.RoundTrip(req)
	}

	// Clone the request to avoid modifying the original.
	clone := req.Clone(req.Context())
	if h.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+h.Cookie)
		} else {
			clone.Header.Set("Cookie", h.Cookie)
		}
	}
	if h.Referer != "" {
		clone.Header.Set("Referer", h.Referer)
	}
	if h.UserAgent != "" {
		clone.Header.Set("User-Agent", h.UserAgent)
	}
	for key, value := range h.Headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}

// match finds the entry for host, preferring the longest matching key.
func (t *headerInjectingTransport) match(host string) (HostHeaders, bool) {
	host = strings.ToLower(host)
	var best string
	found := false
	for key := range t.hosts {
		k := strings.ToLower(key)
		if host == k || strings.HasSuffix(host, "."+k) {
			if !found || len(k) > len(best) {
				best, found = key, true
			}
		}
	}
	if !found {
		return HostHeaders{}, false
	}
	return t.hosts[best], true
}
