// Package config loads the signpack configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/signpack/signpack/signing/entities"
)

// Config is everything a run needs beyond the keystore password. File
// values start from Default and CLI flags overlay them afterwards.
type Config struct {
	Source   string         `yaml:"source"`
	Dest     string         `yaml:"dest"`
	Glob     string         `yaml:"glob"`
	Keystore KeystoreConfig `yaml:"keystore"`
	Tools    ToolsConfig    `yaml:"tools"`
	TSAURL   string         `yaml:"tsa_url"`
	Proxy    ProxyConfig    `yaml:"proxy"`
	Digest   string         `yaml:"digest"`
}

// KeystoreConfig locates the signing credential.
type KeystoreConfig struct {
	Path        string `yaml:"path"`
	Alias       string `yaml:"alias"`
	Fingerprint string `yaml:"fingerprint"` // expected SHA-256, hex; empty skips the check
}

// ToolsConfig names the external signing executables. Bare names are
// resolved through PATH.
type ToolsConfig struct {
	JarSigner string `yaml:"jarsigner"`
	SignTool  string `yaml:"signtool"`
}

// ProxyConfig is the outbound HTTP proxy handed to jarsigner's JVM for
// timestamp-authority access. Empty means direct.
type ProxyConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Glob: "*.zip",
		Keystore: KeystoreConfig{
			Alias: "codesigning",
		},
		Tools: ToolsConfig{
			JarSigner: "jarsigner",
			SignTool:  "signtool",
		},
		TSAURL: "http://timestamp.globalsign.com/scripts/timestamp.dll",
		Digest: "sha256",
	}
}

// Load reads and validates the YAML file at path, overlaying it onto the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, &entities.ConfigError{Path: path, Reason: fmt.Sprintf("cannot read config: %v", err)}
	}
	if err := validate(data); err != nil {
		return cfg, &entities.ConfigError{Path: path, Reason: err.Error()}
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &entities.ConfigError{Path: path, Reason: fmt.Sprintf("cannot parse config: %v", err)}
	}
	return cfg, nil
}

var digestAlgorithms = map[string]bool{
	"sha1":   true,
	"sha256": true,
	"sha384": true,
	"sha512": true,
}

// Validate checks the fields a run cannot start without. Called after flag
// overlay, so it sees the effective configuration.
func (c *Config) Validate() error {
	switch {
	case c.Source == "":
		return &entities.ConfigError{Reason: "source directory is required"}
	case c.Dest == "":
		return &entities.ConfigError{Reason: "destination directory is required"}
	case c.Keystore.Path == "":
		return &entities.ConfigError{Reason: "keystore path is required"}
	case c.Glob == "":
		return &entities.ConfigError{Reason: "archive glob must not be empty"}
	case c.TSAURL == "":
		return &entities.ConfigError{Reason: "timestamp authority URL is required"}
	case !digestAlgorithms[c.Digest]:
		return &entities.ConfigError{Reason: fmt.Sprintf("unsupported digest algorithm %q", c.Digest)}
	}
	return nil
}

// schemaJSON is the structural contract of the config file. Unknown keys
// are rejected so typos surface instead of silently falling back to
// defaults.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "source": {"type": "string"},
    "dest": {"type": "string"},
    "glob": {"type": "string", "minLength": 1},
    "tsa_url": {"type": "string", "format": "uri"},
    "digest": {"enum": ["sha1", "sha256", "sha384", "sha512"]},
    "keystore": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "path": {"type": "string"},
        "alias": {"type": "string"},
        "fingerprint": {"type": "string", "pattern": "^[0-9a-fA-F]*$"}
      }
    },
    "tools": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "jarsigner": {"type": "string"},
        "signtool": {"type": "string"}
      }
    },
    "proxy": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "host": {"type": "string"},
        "port": {"type": "string"}
      }
    }
  }
}`

func validate(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("config.schema.json", strings.NewReader(schemaJSON)); err != nil {
		return err
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}
