package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  - !channel
    address: "0.0.0.0:50051"
    tls: false

instances:
  - name: "main"
    services: ["CAS", "ByteStream", "Execution", "Bots"]
    storage: !with-cache
      cache: !memory
        max_size_bytes: 1073741824
      fallback: !disk
        path: /var/lib/buildgrid/cas
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "buildgrid.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Server, 1)
	assert.Equal(t, "0.0.0.0:50051", cfg.Server[0].Address)

	require.Len(t, cfg.Instances, 1)
	inst := cfg.Instances[0]
	assert.Equal(t, "main", inst.Name)
	assert.Equal(t, BackendWithCache, inst.Storage.Kind)
	require.NotNil(t, inst.Storage.Cache)
	assert.Equal(t, BackendMemory, inst.Storage.Cache.Kind)
	assert.Equal(t, int64(1073741824), inst.Storage.Cache.MaxSizeBytes)
	require.NotNil(t, inst.Storage.Fallback)
	assert.Equal(t, BackendDisk, inst.Storage.Fallback.Kind)
	assert.Equal(t, "/var/lib/buildgrid/cas", inst.Storage.Fallback.Path)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
server:
  - !channel
    address: "0.0.0.0:50051"
    bogus_field: true
instances:
  - name: "main"
    services: ["CAS"]
    storage: !memory
      max_size_bytes: 100
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnrecognizedBackendTag(t *testing.T) {
	path := writeConfig(t, `
server:
  - !channel
    address: "0.0.0.0:50051"
instances:
  - name: "main"
    services: ["CAS"]
    storage: !not-a-real-backend
      foo: bar
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMissingInstances(t *testing.T) {
	path := writeConfig(t, `
server:
  - !channel
    address: "0.0.0.0:50051"
instances: []
`)
	_, err := Load(path)
	assert.Error(t, err)
}
