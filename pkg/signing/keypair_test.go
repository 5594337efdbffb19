package signing

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

var mockCmdExitStatus = 0

func fakeExecCommand(command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	es := strconv.Itoa(mockCmdExitStatus)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "EXIT_STATUS=" + es}
	return cmd
}

// TestHelperProcess is not a real test. It is a helper process for faking exec.Command.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	es, err := strconv.Atoi(os.Getenv("EXIT_STATUS"))
	if err != nil {
		t.Fatalf("Failed to convert EXIT_STATUS to int: %v", err)
	}
	os.Exit(es)
}

func TestNewKeyPairDefaults(t *testing.T) {
	kp := NewKeyPair("", "", "/CN=Test/")
	if kp.KeyFile != DefaultKeyFile {
		t.Errorf("Unexpected key file, want %q, got %q", DefaultKeyFile, kp.KeyFile)
	}
	if kp.CertFile != DefaultCertFile {
		t.Errorf("Unexpected cert file, want %q, got %q", DefaultCertFile, kp.CertFile)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	kp := NewKeyPair(filepath.Join(dir, "MOK.priv"), filepath.Join(dir, "MOK.der"), "/CN=Test/")
	if kp.Exists() {
		t.Errorf("Expected Exists to be false before generation")
	}

	for _, f := range []string{kp.KeyFile, kp.CertFile} {
		if err := os.WriteFile(f, []byte("x"), 0600); err != nil {
			t.Fatalf("Failed to write %s: %v", f, err)
		}
	}
	if !kp.Exists() {
		t.Errorf("Expected Exists to be true once both files are present")
	}
}

func TestGenerate(t *testing.T) {
	execCommand = fakeExecCommand
	defer func() {
		execCommand = exec.Command
		mockCmdExitStatus = 0
	}()

	dir := t.TempDir()
	kp := NewKeyPair(filepath.Join(dir, "MOK.priv"), filepath.Join(dir, "MOK.der"), "/CN=Test/")

	mockCmdExitStatus = 0
	if err := kp.Generate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	mockCmdExitStatus = 1
	if err := kp.Generate(); err == nil {
		t.Errorf("Expected error when openssl fails")
	}
}

func writeTestCert(t *testing.T, path string) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "VMware Module Signing"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}
	if err := os.WriteFile(path, der, 0644); err != nil {
		t.Fatalf("Failed to write certificate: %v", err)
	}
	return der
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "MOK.der")
	der := writeTestCert(t, certFile)

	kp := NewKeyPair(filepath.Join(dir, "MOK.priv"), certFile, "/CN=Test/")
	got, err := kp.Fingerprint()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sum := sha1.Sum(der)
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	want := strings.Join(parts, ":")
	if got != want {
		t.Errorf("Unexpected fingerprint, want %s, got %s", want, got)
	}
}

func TestFingerprintErrors(t *testing.T) {
	dir := t.TempDir()

	kp := NewKeyPair("", filepath.Join(dir, "missing.der"), "/CN=Test/")
	if _, err := kp.Fingerprint(); err == nil {
		t.Errorf("Expected error for missing certificate")
	}

	badFile := filepath.Join(dir, "bad.der")
	if err := os.WriteFile(badFile, []byte("not a certificate"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	kp = NewKeyPair("", badFile, "/CN=Test/")
	if _, err := kp.Fingerprint(); err == nil {
		t.Errorf("Expected error for malformed certificate")
	}
}
