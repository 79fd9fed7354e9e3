package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/buildgrid/buildgrid-go/pkg/security"
)

func TestNewInsecureDialTimeout(t *testing.T) {
	// 10.255.255.1 is a non-routable address reserved for test use; the
	// dial should block until DialTimeout and return an error rather than
	// hang indefinitely.
	_, err := New("10.255.255.1:50051", Options{
		Insecure:    true,
		DialTimeout: 50 * time.Millisecond,
	})
	assert.Error(t, err)
}

func TestNewMissingClientCertFile(t *testing.T) {
	_, err := New("127.0.0.1:50051", Options{
		ClientConfig: security.ClientConfig{
			CertFile: "/nonexistent/client.crt",
			KeyFile:  "/nonexistent/client.key",
		},
		DialTimeout: 50 * time.Millisecond,
	})
	assert.Error(t, err)
}

func TestNewMissingServerCertFile(t *testing.T) {
	_, err := New("127.0.0.1:50051", Options{
		ClientConfig: security.ClientConfig{
			ServerCert: "/nonexistent/server.crt",
		},
		DialTimeout: 50 * time.Millisecond,
	})
	assert.Error(t, err)
}

func TestDigestFileMissing(t *testing.T) {
	_, err := DigestFile("/nonexistent/file")
	assert.Error(t, err)
}
