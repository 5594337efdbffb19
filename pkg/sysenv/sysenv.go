// Package sysenv reads the kernel facts vmware_modsign needs from the
// running system.
package sysenv

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const kernelHeadersDir = "/usr/src"

// Env holds system information captured at startup.
type Env struct {
	uname unix.Utsname
}

// NewEnv returns an Env populated from uname(2).
func NewEnv() (*Env, error) {
	e := &Env{}
	if err := unix.Uname(&e.uname); err != nil {
		return nil, errors.Wrap(err, "failed to get uname")
	}
	return e, nil
}

// KernelRelease returns the running kernel release, i.e. `uname -r`.
func (e *Env) KernelRelease() string { return charsToString(e.uname.Release[:]) }

// SignFilePath returns the path of the kernel's sign-file script for the
// running kernel.
func (e *Env) SignFilePath() string {
	return filepath.Join(kernelHeadersDir, "linux-headers-"+e.KernelRelease(), "scripts", "sign-file")
}

// HasSignFile reports whether the sign-file script exists and is executable
// for the running kernel. Missing headers are the usual cause when it is not.
func (e *Env) HasSignFile() bool {
	info, err := os.Stat(e.SignFilePath())
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Mode()&0111 != 0
}

// charsToString converts a c-style byte array (null-terminated string) to string.
func charsToString(chars []byte) string {
	s := make([]byte, 0, len(chars))
	for _, ch := range chars {
		if ch == 0 {
			break
		}
		s = append(s, ch)
	}
	return string(s)
}
