// Package security loads the TLS material BuildGrid uses for mTLS between
// clients, bots and the server, grounded on the teacher repo's
// pkg/security (crypto/tls, x509 cert-pool construction, RequestClientCert
// posture) but trimmed to plain file-based loading: BuildGrid has no
// cluster CA to issue or rotate certificates, so the CA-authority and
// certificate-rotation machinery in pkg/security/ca.go and
// pkg/security/secrets.go (Raft-replicated CA state, rotation scheduling)
// has no BuildGrid component to serve and is not carried over.
package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// ServerConfig names the files used to build server-side TLS credentials.
type ServerConfig struct {
	CertFile string
	KeyFile  string
	CAFile   string // optional; verifies client certificates if set
}

// ServerTLSConfig builds a *tls.Config for a BuildGrid server listener.
// When CAFile is set, client certificates are requested (not required) so
// that the same listener can still serve anonymous health/capabilities
// probes. No per-RPC authorization is performed: pkg/api's interceptor
// only converts error statuses and records metrics.
func ServerTLSConfig(cfg ServerConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if cfg.CAFile != "" {
		pool, err := loadCertPool(cfg.CAFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.ClientAuth = tls.VerifyClientCertIfGiven
		tlsConfig.ClientCAs = pool
	}

	return tlsConfig, nil
}

// ClientConfig names the files used to build client-side TLS credentials
// for connecting to a BuildGrid server (CLI and bot workers), matching
// spec §6's `--client-key/--client-cert/--server-cert` CLI flags.
type ClientConfig struct {
	CertFile   string // optional; set for mTLS
	KeyFile    string
	ServerCert string // CA/server cert to verify the remote against
}

// ClientTLSConfig builds a *tls.Config for dialing a BuildGrid server.
func ClientTLSConfig(cfg ClientConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.ServerCert != "" {
		pool, err := loadCertPool(cfg.ServerCert)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate %s: %w", path, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
