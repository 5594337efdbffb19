// Package mok wraps mokutil for Secure Boot key enrollment.
package mok

import (
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/utils"
)

var execCommand = exec.Command

// SecureBootEnabled reports whether Secure Boot is active according to
// `mokutil --sb-state`. Firmware without Secure Boot support makes mokutil
// fail; that is reported as an error, not as disabled.
func SecureBootEnabled() (bool, error) {
	out, err := execCommand("mokutil", "--sb-state").Output()
	if err != nil {
		return false, errors.Wrap(err, "failed to run command `mokutil --sb-state`")
	}
	return strings.Contains(string(out), "SecureBoot enabled"), nil
}

// IsEnrolled reports whether the certificate at certPath is already in the
// MOK list.
func IsEnrolled(certPath string) (bool, error) {
	out, err := execCommand("mokutil", "--test-key", certPath).Output()
	if err != nil {
		// mokutil exits non-zero when the key is not enrolled, so inspect
		// the output before treating this as a failure.
		if strings.Contains(string(out), "is not enrolled") {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to run command `mokutil --test-key %s`", certPath)
	}
	return strings.Contains(string(out), "is already enrolled"), nil
}

// ImportCert stages the certificate at certPath for MOK enrollment. mokutil
// prompts for a one-time password on the controlling terminal, so stdin is
// passed through.
func ImportCert(certPath string) error {
	cmd := execCommand("mokutil", "--import", certPath)
	cmd.Stdin = os.Stdin
	if err := utils.RunCommandAndLogOutput(cmd, false); err != nil {
		return errors.Wrapf(err, "failed to import certificate %s", certPath)
	}
	return nil
}
