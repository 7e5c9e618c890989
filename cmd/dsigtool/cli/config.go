package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/philiph/xmldsig"
)

// Config is the dsigtool configuration file. Flags given on the command
// line take precedence over it.
type Config struct {
	Key             string            `json:"key" yaml:"key"`
	Certificates    []string          `json:"certificates" yaml:"certificates"`
	Trusted         []string          `json:"trusted" yaml:"trusted"`
	Digest          string            `json:"digest" yaml:"digest"`
	Canonical       string            `json:"canonicalization" yaml:"canonicalization"`
	SignatureMethod string            `json:"signature_method" yaml:"signature_method"`
	Prefix          string            `json:"prefix" yaml:"prefix"`
	IssuerSerial    bool              `json:"issuer_serial" yaml:"issuer_serial"`
	InsertFirst     bool              `json:"insert_first" yaml:"insert_first"`
	IDAttributes    []string          `json:"id_attributes" yaml:"id_attributes"`
	IDNamespaces    map[string]string `json:"id_namespaces" yaml:"id_namespaces"`
	Fetch           FetchConfig       `json:"fetch" yaml:"fetch"`
}

// FetchConfig enables external reference resolution. With neither
// AllowHTTP nor BaseDir set, external references fail.
type FetchConfig struct {
	AllowHTTP bool   `json:"allow_http" yaml:"allow_http"`
	BaseDir   string `json:"base_dir" yaml:"base_dir"`
	Timeout   string `json:"timeout" yaml:"timeout"`
	CacheTTL  string `json:"cache_ttl" yaml:"cache_ttl"`
	MaxSize   int64  `json:"max_size" yaml:"max_size"`
}

// LoadConfig reads a JSON or YAML configuration file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .json, .yaml or .yml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks algorithm names and durations.
func (c *Config) Validate() error {
	if c.Digest != "" {
		if _, err := resolveDigest(c.Digest); err != nil {
			return err
		}
	}
	if c.Canonical != "" {
		if _, err := resolveCanonical(c.Canonical); err != nil {
			return err
		}
	}
	if c.SignatureMethod != "" {
		if _, ok := xmldsig.AlgorithmByName(c.SignatureMethod); !ok {
			return xmldsig.ErrUnsupportedSignatureMethod.Withf("%q", c.SignatureMethod)
		}
	}
	if _, err := parseDuration("fetch.timeout", c.Fetch.Timeout); err != nil {
		return err
	}
	if _, err := parseDuration("fetch.cache_ttl", c.Fetch.CacheTTL); err != nil {
		return err
	}
	if c.Fetch.MaxSize < 0 {
		return fmt.Errorf("fetch.max_size must not be negative")
	}
	return nil
}

// resolveDigest accepts a short name such as "sha256" or a full digest
// identifier.
func resolveDigest(name string) (string, error) {
	uri, ok := xmldsig.AlgorithmByName(name)
	if !ok {
		uri = name
	}
	if !xmldsig.IsDigestSupported(uri) {
		return "", xmldsig.ErrUnsupportedDigestAlgorithm.Withf("%q", name)
	}
	return uri, nil
}

// resolveCanonical accepts a short name such as "exc-c14n" or a full
// canonicalization identifier.
func resolveCanonical(name string) (string, error) {
	uri, ok := xmldsig.AlgorithmByName(name)
	if !ok {
		uri = name
	}
	if !xmldsig.IsCanonicalMethod(uri) {
		return "", xmldsig.ErrInvalidCanonicalMethod.Withf("%q", name)
	}
	return uri, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
