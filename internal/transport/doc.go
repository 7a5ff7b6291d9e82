// Package transport builds the *http.Client tiles are fetched with.
//
// It supports:
//   - a SOCKS5 proxy (any proxy, or the Tor SOCKS port)
//   - an embedded Tor daemon started on demand through tornago
//   - per-host header, cookie, referer and user agent injection, because
//     many panorama hosts only serve tiles to requests that look like they
//     come from their own viewer page
package transport
