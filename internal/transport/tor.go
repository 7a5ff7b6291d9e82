package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nao1215/tornago"
)

// EmbeddedTor manages a Tor daemon started through tornago, for hosts that
// must not see the caller's address.
//
// Bootstrapping takes anywhere from seconds to a few minutes.
type EmbeddedTor struct {
	process        *tornago.TorProcess
	socksAddr      string
	startupTimeout time.Duration
}

// EmbeddedTorOption configures an EmbeddedTor instance.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		if timeout > 0 {
			e.startupTimeout = timeout
		}
	}
}

// NewEmbeddedTor creates a new embedded Tor manager. Call Start to launch it.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{startupTimeout: 3 * time.Minute}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon and blocks until it has bootstrapped.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	// ":0" lets the OS pick free ports.
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return err
	}

	e.process = process
	e.socksAddr = process.SocksAddr()
	return nil
}

// Stop shuts the daemon down. It is safe to call on an unstarted instance.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	e.socksAddr = ""
	return err
}

// SocksAddr returns the SOCKS5 address of the running daemon, or "".
func (e *EmbeddedTor) SocksAddr() string {
	return e.socksAddr
}

// IsRunning reports whether the daemon is running.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// NewHTTPClient creates a client routed through the running daemon.
// opts.ProxyAddress is overwritten.
func (e *EmbeddedTor) NewHTTPClient(opts Options) (*http.Client, error) {
	if !e.IsRunning() {
		return nil, ErrTorNotRunning
	}
	opts.ProxyAddress = e.socksAddr
	return NewHTTPClient(opts)
}
