package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultConnectTimeout is the connection timeout TargetSetting falls
// back to when none is configured.
const DefaultConnectTimeout = 5 * time.Second

// TargetSetting describes a network target a processor connects out
// to: the URL to reach, optional TLS config, an optional HTTP CONNECT
// proxy to tunnel through, and a connect timeout.
type TargetSetting struct {
	URL            *url.URL      `mapstructure:"url" json:"url"`
	TLS            *tls.Config   `mapstructure:"-" json:"-"`
	Proxy          *url.URL      `mapstructure:"proxy" json:"proxy,omitempty"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" json:"connect_timeout,omitempty"`
}

// NewTargetSetting builds a TargetSetting with the default connect
// timeout.
func NewTargetSetting(u *url.URL, tlsConfig *tls.Config, proxy *url.URL) *TargetSetting {
	return &TargetSetting{URL: u, TLS: tlsConfig, Proxy: proxy, ConnectTimeout: DefaultConnectTimeout}
}

func (t *TargetSetting) timeout() time.Duration {
	if t.ConnectTimeout > 0 {
		return t.ConnectTimeout
	}
	return DefaultConnectTimeout
}

// Connect dials the target, selecting Unix/TCP/TLS/proxy variants by
// branching on scheme, ssl, and proxy presence.
func (t *TargetSetting) Connect(ctx context.Context) (*Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout())
	defer cancel()

	if t.URL.Scheme == "unix" || t.URL.Scheme == "file" {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "unix", t.URL.Path)
		if err != nil {
			return nil, fmt.Errorf("transport: connecting unix socket %s: %w", t.URL.Path, err)
		}
		return newStream(conn, KindUnix), nil
	}

	host := t.URL.Hostname()
	port, err := targetPort(t.URL)
	if err != nil {
		return nil, err
	}
	tlsConfig := t.tlsFor(host)

	if t.Proxy != nil {
		conn, err := connectThroughProxy(ctx, t.Proxy, host, port)
		if err != nil {
			return nil, err
		}
		if tlsConfig != nil {
			tlsConn := tls.Client(conn, tlsConfig)
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, fmt.Errorf("transport: TLS handshake through proxy: %w", err)
			}
			return newStream(tlsConn, KindTLSProxy), nil
		}
		return newStream(conn, KindTCPProxy), nil
	}

	var d net.Dialer
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: connecting tcp %s: %w", addr, err)
	}

	if tlsConfig != nil {
		tlsConn := tls.Client(conn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("transport: TLS handshake with %s: %w", addr, err)
		}
		return newStream(tlsConn, KindTLS), nil
	}
	return newStream(conn, KindTCP), nil
}

// tlsFor returns the TLS config to drive the client handshake with,
// or nil for a plaintext connection: the configured one if present,
// a default config when the URL scheme itself asks for TLS, with the
// URL domain filled in as the SNI target either way if the config
// doesn't name one.
func (t *TargetSetting) tlsFor(host string) *tls.Config {
	cfg := t.TLS
	if cfg == nil {
		if !schemeIsTLS(t.URL.Scheme) {
			return nil
		}
		cfg = &tls.Config{}
	}
	cfg = cfg.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	return cfg
}

func schemeIsTLS(scheme string) bool {
	switch scheme {
	case "ssl", "tls", "https", "wss":
		return true
	}
	return strings.HasSuffix(scheme, "+ssl") || strings.HasSuffix(scheme, "+tls")
}

func targetPort(u *url.URL) (uint16, error) {
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("transport: invalid port in url %s: %w", u, err)
		}
		return uint16(n), nil
	}
	switch u.Scheme {
	case "https", "ssl", "tls", "wss":
		return 443, nil
	case "http", "ws", "":
		return 80, nil
	default:
		return 0, fmt.Errorf("transport: cannot determine default port for scheme %q", u.Scheme)
	}
}

func (t *TargetSetting) String() string {
	scheme := t.URL.Scheme
	if t.TLS != nil && scheme != "" && scheme != "ssl" && scheme != "tls" && scheme != "https" && scheme != "wss" {
		scheme = scheme + "+ssl"
	}
	display := *t.URL
	display.Scheme = scheme
	if t.Proxy != nil {
		return fmt.Sprintf("%s -proxy %s", display.String(), t.Proxy.String())
	}
	return display.String()
}
