package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/tornago"
	"golang.org/x/net/proxy"
)

// NewTorHTTPClient returns an HTTP client routing all connections through
// the Tor SOCKS5 proxy at proxyAddress ("host:port").
//
// The proxy is not contacted here; a dead proxy surfaces as request errors.
func NewTorHTTPClient(proxyAddress string, timeout time.Duration) (*http.Client, error) {
	if !validProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
	}

	transport := &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
		// Each connection consumes a Tor circuit, so keep the idle pool
		// smaller than the defaults.
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// validProxyAddress checks for "host:port" with a port in 1..65535.
func validProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// EmbeddedTor manages an embedded Tor daemon via tornago for deployments
// without a system Tor service. Bootstrap takes one to three minutes on
// first start.
type EmbeddedTor struct {
	process        *tornago.TorProcess
	socksAddr      string
	startupTimeout time.Duration
}

// NewEmbeddedTor creates an embedded Tor manager. Call Start to launch the
// daemon.
func NewEmbeddedTor(startupTimeout time.Duration) *EmbeddedTor {
	if startupTimeout <= 0 {
		startupTimeout = 3 * time.Minute
	}
	return &EmbeddedTor{startupTimeout: startupTimeout}
}

// Start launches the daemon and blocks until it bootstraps or the timeout
// elapses. On success SocksAddr returns the proxy address to dial.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	launchCfg, err := tornago.NewTorLaunchConfig(
		// ":0" lets the OS pick free ports.
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("create Tor launch config: %w", err)
	}

	// Blocks until fully bootstrapped or timed out.
	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("start embedded Tor daemon: %w", err)
	}

	select {
	case <-ctx.Done():
		_ = process.Stop()
		return ctx.Err()
	default:
	}

	e.process = process
	e.socksAddr = normalizeLoopback(process.SocksAddr())
	return nil
}

// SocksAddr returns the SOCKS5 address of the running daemon, or empty
// before Start succeeds.
func (e *EmbeddedTor) SocksAddr() string {
	return e.socksAddr
}

// Stop shuts the daemon down. Safe to call when not started.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	return err
}

// normalizeLoopback rewrites a wildcard listen address to loopback so it can
// be dialed.
func normalizeLoopback(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	return addr
}
