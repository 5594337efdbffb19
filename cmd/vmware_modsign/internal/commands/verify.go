package commands

import (
	"context"
	"flag"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/config"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/modules"
)

// VerifyCommand is the subcommand to check that the VMware kernel modules
// carry an appended signature.
type VerifyCommand struct {
	cfg   *config.Config
	debug bool
}

// NewVerifyCommand returns a VerifyCommand using cfg.
func NewVerifyCommand(cfg *config.Config) *VerifyCommand { return &VerifyCommand{cfg: cfg} }

// Name implements subcommands.Command.Name.
func (*VerifyCommand) Name() string { return "verify" }

// Synopsis implements subcommands.Command.Synopsis.
func (*VerifyCommand) Synopsis() string { return "Check the VMware kernel modules for signatures." }

// Usage implements subcommands.Command.Usage.
func (*VerifyCommand) Usage() string { return "verify\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (c *VerifyCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.debug, "debug", false, "Enable debug mode.")
}

// Execute implements subcommands.Command.Execute.
func (c *VerifyCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := runVerify(c.cfg)
	record("verify", err)
	if err != nil {
		logError(err, c.debug)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runVerify parses the module_signature trailer of each module file rather
// than searching the binary for the marker string, so a stray occurrence of
// the marker cannot pass for a signature.
func runVerify(cfg *config.Config) error {
	var unsigned []string
	for _, name := range cfg.Modules {
		path, err := modules.Path(name)
		if err != nil {
			return errors.Wrapf(err, "failed to locate module %s", name)
		}
		ok, err := modules.CheckSignature(path)
		if err != nil {
			return errors.Wrapf(err, "failed to check signature of %s", name)
		}
		if ok {
			color.Green("  [signed]   %s (%s)", name, path)
		} else {
			color.Red("  [unsigned] %s (%s)", name, path)
			unsigned = append(unsigned, name)
		}
		if loaded, err := modules.IsLoaded(name); err != nil {
			log.Warnf("Could not check whether %s is loaded: %v", name, err)
		} else if !loaded {
			log.Warnf("Module %s is not currently loaded", name)
		}
	}
	if len(unsigned) > 0 {
		return errors.Errorf("modules without signature: %s", strings.Join(unsigned, ", "))
	}
	return nil
}
