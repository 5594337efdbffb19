// Package modules provides functionality to locate, sign and inspect Linux
// kernel modules.
package modules

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pkg/errors"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/utils"
)

const (
	// PKEYIDPKCS7 is a constant defined in https://github.com/torvalds/linux/blob/master/scripts/sign-file.c
	PKEYIDPKCS7 = byte(2)
	// magicNumber is a constant defined in https://github.com/torvalds/linux/blob/master/scripts/sign-file.c
	magicNumber = "~Module signature appended~\n"
	// sigInfoLen is the size of struct module_signature in scripts/sign-file.c
	sigInfoLen = 12
)

var execCommand = exec.Command

// Path resolves the on-disk path of a kernel module via `modinfo -n`.
func Path(moduleName string) (string, error) {
	out, err := execCommand("modinfo", "-n", moduleName).Output()
	if err != nil {
		return "", errors.Wrapf(err, "failed to run command `modinfo -n %s`", moduleName)
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", errors.Errorf("modinfo returned no path for module %s", moduleName)
	}
	return path, nil
}

// IsLoaded reports whether a kernel module is currently loaded.
func IsLoaded(moduleName string) (bool, error) {
	out, err := execCommand("lsmod").Output()
	if err != nil {
		return false, errors.Wrap(err, "failed to run command `lsmod`")
	}

	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == moduleName {
			return true, nil
		}
	}
	return false, nil
}

// Sign signs the kernel module at modulePath in place using the kernel's
// sign-file script and the given key pair.
func Sign(signFilePath, hashAlgo, keyPath, certPath, modulePath string) error {
	log.Infof("Signing module %s", modulePath)
	cmd := execCommand(signFilePath, hashAlgo, keyPath, certPath, modulePath)
	if err := utils.RunCommandAndLogOutput(cmd, false); err != nil {
		return errors.Wrapf(err, "failed to sign module %s", modulePath)
	}
	return nil
}

// CheckSignature reports whether the module file at modulePath carries an
// appended module signature. It parses the trailing struct module_signature
// and magic string that sign-file appends, so the check is exact rather than
// a text search over the binary.
func CheckSignature(modulePath string) (bool, error) {
	f, err := os.Open(modulePath)
	if err != nil {
		return false, errors.Wrapf(err, "failed to open module %s", modulePath)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat module %s", modulePath)
	}
	size := info.Size()
	trailerLen := int64(sigInfoLen + len(magicNumber))
	if size < trailerLen {
		return false, nil
	}

	trailer := make([]byte, trailerLen)
	if _, err := f.ReadAt(trailer, size-trailerLen); err != nil && err != io.EOF {
		return false, errors.Wrapf(err, "failed to read module %s", modulePath)
	}

	if !bytes.Equal(trailer[sigInfoLen:], []byte(magicNumber)) {
		return false, nil
	}

	// trailer[:sigInfoLen] is struct module_signature; byte 2 is id_type and
	// bytes 8:12 hold sig_len in network byte order.
	if trailer[2] != PKEYIDPKCS7 {
		return false, nil
	}
	sigLen := binary.BigEndian.Uint32(trailer[8:12])
	if sigLen == 0 || int64(sigLen)+trailerLen > size {
		return false, nil
	}
	return true, nil
}
