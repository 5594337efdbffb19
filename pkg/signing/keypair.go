// Package signing manages the self-signed key pair used to sign the VMware
// kernel modules.
package signing

import (
	"crypto/sha1"
	"crypto/x509"
	"fmt"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pkg/errors"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/utils"
)

const (
	// DefaultKeyFile is the fixed name of the generated private key.
	DefaultKeyFile = "MOK.priv"
	// DefaultCertFile is the fixed name of the generated DER certificate.
	DefaultCertFile = "MOK.der"

	rsaBits  = "2048"
	certDays = "36500"
)

var execCommand = exec.Command

// KeyPair is a private key and self-signed certificate on disk.
type KeyPair struct {
	KeyFile  string
	CertFile string
	Subject  string
}

// NewKeyPair returns a KeyPair with the given paths, falling back to the
// fixed default names for empty fields.
func NewKeyPair(keyFile, certFile, subject string) *KeyPair {
	if keyFile == "" {
		keyFile = DefaultKeyFile
	}
	if certFile == "" {
		certFile = DefaultCertFile
	}
	return &KeyPair{KeyFile: keyFile, CertFile: certFile, Subject: subject}
}

// Exists reports whether both the key and the certificate are present.
func (k *KeyPair) Exists() bool {
	for _, f := range []string{k.KeyFile, k.CertFile} {
		if _, err := os.Stat(f); err != nil {
			return false
		}
	}
	return true
}

// Generate creates a 2048-bit RSA key and a 100-year self-signed certificate
// with openssl. Existing files are overwritten.
func (k *KeyPair) Generate() error {
	if k.Exists() {
		log.Warnf("Overwriting existing key pair %s / %s; modules signed with the old key stay valid only while its certificate remains enrolled", k.KeyFile, k.CertFile)
	}
	log.Infof("Generating key pair %s / %s", k.KeyFile, k.CertFile)

	cmd := execCommand("openssl", "req", "-new", "-x509",
		"-newkey", "rsa:"+rsaBits, "-nodes", "-days", certDays,
		"-outform", "DER",
		"-keyout", k.KeyFile, "-out", k.CertFile,
		"-subj", k.Subject)
	if err := utils.RunCommandAndLogOutput(cmd, false); err != nil {
		return errors.Wrap(err, "failed to generate key pair")
	}
	return nil
}

// Fingerprint returns the SHA-1 fingerprint of the certificate, formatted the
// way the MOK enrollment screen displays it.
func (k *KeyPair) Fingerprint() (string, error) {
	der, err := os.ReadFile(k.CertFile)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read certificate %s", k.CertFile)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse certificate %s", k.CertFile)
	}
	sum := sha1.Sum(cert.Raw)
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":"), nil
}
