package commands

import (
	"context"
	"flag"
	"os/exec"

	log "github.com/sirupsen/logrus"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/utils"
)

// InstallCommand is the subcommand to build and install the VMware kernel
// modules.
type InstallCommand struct {
	debug bool
}

// NewInstallCommand returns an InstallCommand.
func NewInstallCommand() *InstallCommand { return &InstallCommand{} }

// Name implements subcommands.Command.Name.
func (*InstallCommand) Name() string { return "install" }

// Synopsis implements subcommands.Command.Synopsis.
func (*InstallCommand) Synopsis() string {
	return "Build and install all VMware kernel modules."
}

// Usage implements subcommands.Command.Usage.
func (*InstallCommand) Usage() string { return "install\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (c *InstallCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.debug, "debug", false, "Enable debug mode.")
}

// Execute implements subcommands.Command.Execute.
func (c *InstallCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := runInstall()
	record("install", err)
	if err != nil {
		logError(err, c.debug)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func runInstall() error {
	log.Info("Building and installing all VMware kernel modules")
	cmd := exec.Command("vmware-modconfig", "--console", "--install-all")
	if err := utils.RunCommandAndLogOutput(cmd, false); err != nil {
		return errors.Wrap(err, "failed to build VMware kernel modules")
	}
	return nil
}
