package transport

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"
)

// selfSignedCert builds an ECDSA P-256 self-signed certificate valid for
// dnsName, used when a ListenerSetting asks for TLS but no certificate
// material was configured. ECDSA is used instead of RSA because key
// generation is fast and the certificate is short-lived.
func selfSignedCert(dnsName string) (*tls.Certificate, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("transport: generating key pair: %w", err)
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: dnsName},
		SignatureAlgorithm:    x509.ECDSAWithSHA256,
		NotBefore:             now.Add(-1 * time.Hour),
		NotAfter:              now.Add(24 * 365 * time.Hour),
		DNSNames:              []string{dnsName},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("transport: creating self-signed certificate: %w", err)
	}

	cert := &tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  privateKey,
	}
	return cert, nil
}

// CertStore holds the current server certificate behind an atomic.Value so
// it can be hot-swapped without tearing down listeners already accepting
// connections, pushing a refreshed cert into a running *tls.Config.
type CertStore struct {
	cur atomic.Value
}

// NewCertStore wraps an initial certificate.
func NewCertStore(cert *tls.Certificate) *CertStore {
	s := &CertStore{}
	s.cur.Store(cert)
	return s
}

// Set installs a new certificate, visible to subsequent handshakes
// immediately.
func (s *CertStore) Set(cert *tls.Certificate) {
	s.cur.Store(cert)
}

// GetCertificate satisfies tls.Config.GetCertificate.
func (s *CertStore) GetCertificate(_ *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cert, _ := s.cur.Load().(*tls.Certificate)
	if cert == nil {
		return nil, fmt.Errorf("transport: no certificate installed")
	}
	return cert, nil
}
