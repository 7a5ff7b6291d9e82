package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF

	checkProxyTimeout = 10 * time.Second
)

// CheckProxy verifies that address speaks SOCKS5 and accepts a client
// without authentication. Only the method negotiation is performed; no
// connection through the proxy is opened.
func CheckProxy(ctx context.Context, address string) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return ProxyStatusCannotConnect
	}

	// version, one method, no auth
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if resp[0] != socks5Version || resp[1] == socks5AuthNoAccept || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}
