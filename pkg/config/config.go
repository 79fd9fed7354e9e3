// Package config loads the YAML server configuration described in spec
// §6: a `server` list of channel descriptors and an `instances` list
// naming the services each instance serves, with backend instances
// constructed from `!`-tagged YAML nodes (`!memory`, `!disk`, `!s3`,
// `!with-cache`, `!sql`) rather than a discriminator field, matching the
// original server's YAML schema. Decoding uses `gopkg.in/yaml.v3`
// (teacher); post-decode validation uses
// `github.com/go-playground/validator/v10` (jordigilh-kubernaut pack
// entry) struct tags rather than hand-written field checks.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level document: `server` channel descriptors plus
// `instances`, each naming the services it serves and the backends those
// services are built from.
type Config struct {
	Server    []ChannelConfig  `yaml:"server" validate:"required,min=1,dive"`
	Instances []InstanceConfig `yaml:"instances" validate:"required,min=1,dive"`
}

// ChannelConfig describes one gRPC listener, constructed from a
// `!channel`-tagged YAML node.
type ChannelConfig struct {
	Address  string `yaml:"address" validate:"required"`
	TLS      bool   `yaml:"tls"`
	CertFile string `yaml:"cert_file" validate:"required_if=TLS true"`
	KeyFile  string `yaml:"key_file" validate:"required_if=TLS true"`
	CAFile   string `yaml:"ca_file"`
}

// InstanceConfig names one REAPI/RWAPI instance and the services it
// serves, each backed by a BackendConfig constructed from its own
// `!`-tagged node.
type InstanceConfig struct {
	Name     string         `yaml:"name" validate:"required"`
	Services []string       `yaml:"services" validate:"required,min=1,dive,oneof=CAS ByteStream ActionCache Execution Bots Operations Capabilities ReferenceStorage"`
	Storage  BackendConfig  `yaml:"storage"`
	Cache    *BackendConfig `yaml:"cache,omitempty"`
}

// BackendKind identifies which backend constructor a BackendConfig node
// was tagged with.
type BackendKind string

const (
	BackendMemory    BackendKind = "memory"
	BackendDisk      BackendKind = "disk"
	BackendS3        BackendKind = "s3"
	BackendWithCache BackendKind = "with-cache"
	BackendSQL       BackendKind = "sql"
)

var backendTags = map[string]BackendKind{
	"!memory":     BackendMemory,
	"!disk":       BackendDisk,
	"!s3":         BackendS3,
	"!with-cache": BackendWithCache,
	"!sql":        BackendSQL,
}

// BackendConfig is a polymorphic CAS/cache backend descriptor. Its
// concrete Kind and fields are determined by the YAML tag on the node
// (`!memory`, `!disk`, `!s3`, `!with-cache`, `!sql`), mirroring the
// original server's tag-constructor config grammar instead of a
// discriminator field.
type BackendConfig struct {
	Kind BackendKind `yaml:"-"`

	// Memory
	MaxSizeBytes int64 `yaml:"max_size_bytes"`

	// Disk
	Path string `yaml:"path"`

	// S3 / object store
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	// With-cache
	Cache    *BackendConfig `yaml:"cache"`
	Fallback *BackendConfig `yaml:"fallback"`

	// SQL
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// UnmarshalYAML dispatches on node.Tag to determine which backend this
// node describes, matching spec §6's "`!`-tags construct backend
// instances with named fields."
func (b *BackendConfig) UnmarshalYAML(node *yaml.Node) error {
	kind, ok := backendTags[node.Tag]
	if !ok {
		return fmt.Errorf("config: unrecognized backend tag %q at line %d", node.Tag, node.Line)
	}

	type plain BackendConfig
	if err := node.Decode((*plain)(b)); err != nil {
		return err
	}
	b.Kind = kind
	return nil
}

var validate = validator.New()

// Load reads, parses and validates the BuildGrid server config at path.
// Unknown fields in the YAML document are rejected, except inside
// !-tagged backend nodes: BackendConfig.UnmarshalYAML decodes those with
// yaml.Node.Decode, which does not apply the known-fields check.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return &cfg, nil
}
