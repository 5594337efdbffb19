// Package config loads the optional vmware_modsign configuration file.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the configuration file.
const DefaultPath = "modsign.yaml"

// Config holds the tunables of vmware_modsign. All fields are optional in the
// configuration file; zero values fall back to the defaults below.
type Config struct {
	// KeyFile is the private key written by key generation (PEM).
	KeyFile string `yaml:"keyfile"`
	// CertFile is the self-signed certificate written by key generation (DER).
	CertFile string `yaml:"certfile"`
	// LogFile receives a copy of all log entries and subprocess output.
	LogFile string `yaml:"logfile"`
	// Subject is the X.509 subject of the generated certificate.
	Subject string `yaml:"subject"`
	// Modules are the kernel modules to sign and verify.
	Modules []string `yaml:"modules"`
	// HashAlgo is the hash algorithm passed to sign-file.
	HashAlgo string `yaml:"hashalgo"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		KeyFile:  "MOK.priv",
		CertFile: "MOK.der",
		LogFile:  "vmware-modsign.log",
		Subject:  "/CN=VMware Module Signing/",
		Modules:  []string{"vmmon", "vmnet"},
		HashAlgo: "sha256",
	}
}

// Load reads the configuration file at path. A missing file is not an error
// and yields the defaults. Fields left unset in the file keep their defaults.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if len(c.Modules) == 0 {
		c.Modules = Default().Modules
	}
	return c, nil
}
