package api

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout bounds every remote call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// TLSOptions configures trust and client identity for an HTTPS API.
// All fields are optional; CertFile and KeyFile must be set together.
type TLSOptions struct {
	CAFile   string
	CertFile string
	KeyFile  string
}

// NewHTTPClient builds the *http.Client used by Client.
func NewHTTPClient(timeout time.Duration, opts TLSOptions) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if opts == (TLSOptions{}) {
		return &http.Client{Timeout: timeout}, nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if opts.CAFile != "" {
		caCert, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caPool
	}

	if opts.CertFile != "" || opts.KeyFile != "" {
		if opts.CertFile == "" || opts.KeyFile == "" {
			return nil, errors.New("client cert and key must be set together")
		}
		cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
