package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeSelfSignedCert(t *testing.T, dir, name string) (certPath, keyPath string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: name},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	certPath = filepath.Join(dir, name+".crt")
	keyPath = filepath.Join(dir, name+".key")

	certOut, err := os.Create(certPath)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, certOut.Close())

	keyOut, err := os.Create(keyPath)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(keyOut, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
	require.NoError(t, keyOut.Close())

	return certPath, keyPath
}

func TestServerTLSConfigWithoutClientCA(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath := writeSelfSignedCert(t, dir, "server")

	cfg, err := ServerTLSConfig(ServerConfig{CertFile: certPath, KeyFile: keyPath})
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	require.Nil(t, cfg.ClientCAs)
}

func TestServerTLSConfigWithClientCA(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath := writeSelfSignedCert(t, dir, "server")
	caPath, _ := writeSelfSignedCert(t, dir, "ca")

	cfg, err := ServerTLSConfig(ServerConfig{CertFile: certPath, KeyFile: keyPath, CAFile: caPath})
	require.NoError(t, err)
	require.NotNil(t, cfg.ClientCAs)
}

func TestClientTLSConfig(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath := writeSelfSignedCert(t, dir, "client")
	serverCertPath, _ := writeSelfSignedCert(t, dir, "server")

	cfg, err := ClientTLSConfig(ClientConfig{CertFile: certPath, KeyFile: keyPath, ServerCert: serverCertPath})
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	require.NotNil(t, cfg.RootCAs)
}

func TestServerTLSConfigMissingFile(t *testing.T) {
	_, err := ServerTLSConfig(ServerConfig{CertFile: "/nonexistent.crt", KeyFile: "/nonexistent.key"})
	require.Error(t, err)
}
