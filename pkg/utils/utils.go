// Package utils provides run-command and terminal helpers shared by the
// vmware_modsign packages.
package utils

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/logging"
)

var lockFile = "/var/lock/vmware_modsign.lock"

// Flock acquires an exclusive lock so that only one vmware_modsign signs
// modules at a time. It exits the process if another instance holds the lock.
func Flock() *os.File {
	f, err := os.OpenFile(lockFile, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		log.Fatalf("failed to open lock file %s: %v", lockFile, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		log.Fatalf("another instance of vmware_modsign is running (%s): %v", lockFile, err)
	}
	return f
}

// RunCommandAndLogOutput runs cmd with its stdout and stderr streamed to the
// console and appended to the log file. With quiet set, output goes to the
// log file only.
func RunCommandAndLogOutput(cmd *exec.Cmd, quiet bool) error {
	str := strings.Join(cmd.Args, " ")
	log.Infof("running %q", str)

	w := logging.Output()
	if quiet {
		w = logging.FileOnly()
	}
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "failed to run %q", str)
	}
	log.Infof("finished running %q", str)
	return nil
}

// ReadLine reads one line from r with leading and trailing spaces removed.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "failed to read input")
	}
	return strings.TrimSpace(line), nil
}

// Confirm prints prompt and reads a yes/no answer. Only "y" and "yes"
// (case-insensitive) count as yes.
func Confirm(r *bufio.Reader, prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)
	answer, err := ReadLine(r)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
