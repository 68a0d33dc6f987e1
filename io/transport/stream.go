// Package transport implements a Stream/Listener capability: a uniform
// read/write surface over Unix, TCP, TLS, and HTTP-CONNECT-proxied
// variants of the same, so a processor's adaptor never branches on
// which kind of socket it was handed.
package transport

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/google/uuid"
	"golang.org/x/net/ipv4"
)

// Kind identifies which concrete transport backs a Stream.
type Kind int

const (
	KindUnix Kind = iota
	KindTCP
	KindTLS
	KindTCPProxy
	KindTLSProxy
)

func (k Kind) String() string {
	switch k {
	case KindUnix:
		return "unix"
	case KindTCP:
		return "tcp"
	case KindTLS:
		return "ssl"
	case KindTCPProxy:
		return "tcp+http_proxy"
	case KindTLSProxy:
		return "ssl+http_proxy"
	default:
		return "unknown"
	}
}

// Stream is a tagged net.Conn: every variant in the
// `{ Unix, Tcp, Tls(Tcp), TcpViaHttpConnectProxy, TlsViaHttpConnectProxy }`
// union satisfies the same net.Conn contract, so Stream simply embeds one
// and remembers which kind it is for display and for the TCP-only
// knobs (nodelay, ttl) that non-TCP variants answer with benign
// defaults instead of an error.
type Stream struct {
	net.Conn
	kind Kind
	id   string
}

// Kind reports which transport variant this Stream wraps.
func (s *Stream) Kind() Kind { return s.kind }

// ID returns the stream's connection id, stamped at creation, for log
// correlation across the two ends of a proxied or TLS-wrapped hop.
func (s *Stream) ID() string { return s.id }

// tcpConn extracts the *net.TCPConn backing this stream, unwrapping a
// *tls.Conn if present, or nil if the stream isn't TCP-backed.
func (s *Stream) tcpConn() *net.TCPConn {
	conn := s.Conn
	if tlsConn, ok := conn.(*tls.Conn); ok {
		conn = tlsConn.NetConn()
	}
	tcpConn, _ := conn.(*net.TCPConn)
	return tcpConn
}

// SetNoDelay sets TCP_NODELAY on the underlying socket. Non-TCP
// variants (Unix) report success without doing anything.
func (s *Stream) SetNoDelay(nodelay bool) error {
	tcpConn := s.tcpConn()
	if tcpConn == nil {
		return nil
	}
	return tcpConn.SetNoDelay(nodelay)
}

// NoDelay always reports true: that is Go's default TCP_NODELAY state
// for TCP variants, and the answer for non-TCP variants. A value set
// with SetNoDelay(false) is not reflected.
func (s *Stream) NoDelay() (bool, error) {
	tcpConn := s.tcpConn()
	if tcpConn == nil {
		return true, nil
	}
	// net.TCPConn exposes no getter for TCP_NODELAY.
	return true, nil
}

// SetTTL sets IP_TTL on the underlying socket. Non-TCP variants report
// success without doing anything.
func (s *Stream) SetTTL(ttl int) error {
	tcpConn := s.tcpConn()
	if tcpConn == nil {
		return nil
	}
	return ipv4.NewConn(tcpConn).SetTTL(ttl)
}

// TTL returns the current IP_TTL, 0 for non-TCP variants.
func (s *Stream) TTL() (int, error) {
	tcpConn := s.tcpConn()
	if tcpConn == nil {
		return 0, nil
	}
	return ipv4.NewConn(tcpConn).TTL()
}

func (s *Stream) String() string {
	addr := "0.0.0.0:0"
	if s.Conn != nil {
		if local := s.Conn.LocalAddr(); local != nil {
			addr = local.String()
		}
	}
	return fmt.Sprintf("%s://%s", s.kind, addr)
}

func newStream(conn net.Conn, kind Kind) *Stream {
	return &Stream{Conn: conn, kind: kind, id: uuid.NewString()}
}
