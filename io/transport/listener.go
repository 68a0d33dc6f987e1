package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"runtime"
	"strconv"
	"syscall"
	"time"
)

// DefaultSSLTimeout is the handshake deadline a TLS accept is allowed.
const DefaultSSLTimeout = 3 * time.Second

// Listener accepts Streams. TLS acceptance happens inside Accept, so
// callers never branch on whether the listener is encrypted.
type Listener struct {
	net.Listener
	tlsConfig  *tls.Config
	sslTimeout time.Duration
	kind       Kind
}

// ListenerSetting describes a network listener: the URL to bind, an
// optional TLS config, and a cap on concurrently open sockets. The cap
// is carried as configuration only: Bind and Accept do not enforce it.
type ListenerSetting struct {
	URL       *url.URL    `mapstructure:"url" json:"url"`
	TLS       *tls.Config `mapstructure:"-" json:"-"`
	MaxSocket uint64      `mapstructure:"max_socket" json:"max_socket,omitempty"`
}

// NewListenerSetting builds a ListenerSetting defaulted to the
// process's soft file-descriptor limit minus one.
func NewListenerSetting(u *url.URL, tlsConfig *tls.Config) *ListenerSetting {
	return &ListenerSetting{URL: u, TLS: tlsConfig, MaxSocket: defaultMaxSocket()}
}

func defaultMaxSocket() uint64 {
	if runtime.GOOS == "windows" {
		return 512 - 1
	}
	var rlimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlimit); err != nil {
		return uint64(^uint32(0)) // best-effort fallback
	}
	if rlimit.Cur == 0 {
		return 1
	}
	return rlimit.Cur - 1
}

// Bind opens the listener described by l: a Unix socket for
// unix://host/path, otherwise a TCP listener wrapped with TLS
// acceptance when TLS is set, self-signing a certificate if none was
// provided.
func (l *ListenerSetting) Bind(ctx context.Context) (*Listener, error) {
	if l.URL.Scheme == "unix" || l.URL.Scheme == "file" {
		ln, err := net.Listen("unix", l.URL.Path)
		if err != nil {
			return nil, fmt.Errorf("transport: binding unix socket %s: %w", l.URL.Path, err)
		}
		return &Listener{Listener: ln, kind: KindUnix}, nil
	}

	host := l.URL.Hostname()
	port, err := targetPort(l.URL)
	if err != nil {
		return nil, err
	}
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: binding tcp %s: %w", addr, err)
	}

	if l.TLS == nil {
		return &Listener{Listener: ln, kind: KindTCP}, nil
	}

	tlsConfig := l.TLS.Clone()
	if len(tlsConfig.Certificates) == 0 && tlsConfig.GetCertificate == nil {
		cert, err := selfSignedCert(host)
		if err != nil {
			ln.Close()
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{*cert}
	}

	return &Listener{
		Listener:   ln,
		tlsConfig:  tlsConfig,
		sslTimeout: DefaultSSLTimeout,
		kind:       KindTLS,
	}, nil
}

// Accept accepts one client, performing the TLS handshake inline when
// the listener is encrypted, timing it out after sslTimeout.
func (l *Listener) Accept() (*Stream, net.Addr, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, nil, err
	}
	addr := conn.RemoteAddr()

	if l.tlsConfig == nil {
		return newStream(conn, l.kind), addr, nil
	}

	tlsConn := tls.Server(conn, l.tlsConfig)
	ctx, cancel := context.WithTimeout(context.Background(), l.sslTimeout)
	defer cancel()
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("transport: TLS handshake timeout[%s] for %s: %w", l.sslTimeout, addr, err)
	}
	return newStream(tlsConn, l.kind), addr, nil
}

// AcceptRaw accepts a client without performing the TLS handshake,
// letting the caller call Handshake once it is ready to block on it.
func (l *Listener) AcceptRaw() (*Stream, net.Addr, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, nil, err
	}
	kind := l.kind
	if kind == KindTLS {
		kind = KindTCP
	}
	return newStream(conn, kind), conn.RemoteAddr(), nil
}

// Handshake performs the deferred TLS handshake on a stream obtained
// from AcceptRaw, a no-op if this listener isn't TLS-configured.
func (l *Listener) Handshake(ctx context.Context, s *Stream) (*Stream, error) {
	if l.tlsConfig == nil {
		return s, nil
	}
	tlsConn := tls.Server(s.Conn, l.tlsConfig)
	hctx, cancel := context.WithTimeout(ctx, l.sslTimeout)
	defer cancel()
	if err := tlsConn.HandshakeContext(hctx); err != nil {
		return nil, fmt.Errorf("transport: TLS handshake timeout[%s]: %w", l.sslTimeout, err)
	}
	return newStream(tlsConn, l.kind), nil
}
