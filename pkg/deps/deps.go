// Package deps implements the preflight checks vmware_modsign runs before
// doing anything else.
package deps

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"

	log "github.com/sirupsen/logrus"

	"github.com/pkg/errors"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/utils"
)

// Tool is an executable the program shells out to, with the apt package that
// provides it.
type Tool struct {
	Executable string
	Package    string
}

// RequiredTools are the executables checked at startup. vmware-modconfig is
// deliberately not in the list; whether VMware is installed is out of scope.
var RequiredTools = []Tool{
	{Executable: "openssl", Package: "openssl"},
	{Executable: "mokutil", Package: "mokutil"},
	{Executable: "modinfo", Package: "kmod"},
}

var (
	execCommand = exec.Command
	lookPath    = exec.LookPath
	geteuid     = os.Geteuid
)

// CheckRoot returns an error unless the process runs as the superuser.
func CheckRoot() error {
	if geteuid() != 0 {
		return errors.New("this program must be run as root")
	}
	return nil
}

// EnsureTools verifies every required executable is present. For each missing
// one the user is asked whether to install the providing package; refusal or
// a failed install is an error.
func EnsureTools(r *bufio.Reader) error {
	for _, tool := range RequiredTools {
		if _, err := lookPath(tool.Executable); err == nil {
			continue
		}
		ok, err := utils.Confirm(r, fmt.Sprintf("%s is not installed. Install package %q now?", tool.Executable, tool.Package))
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("cannot continue without %s", tool.Executable)
		}
		if err := installPackage(tool.Package); err != nil {
			return errors.Wrapf(err, "failed to install package %s", tool.Package)
		}
		log.Infof("Installed package %s", tool.Package)
	}
	return nil
}

func installPackage(pkg string) error {
	return utils.RunCommandAndLogOutput(execCommand("apt-get", "install", "-y", pkg), false)
}
