package commands

import (
	"context"
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/config"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/mok"
)

// ImportCommand is the subcommand to stage the signing certificate for MOK
// enrollment.
type ImportCommand struct {
	cfg   *config.Config
	debug bool
}

// NewImportCommand returns an ImportCommand using cfg.
func NewImportCommand(cfg *config.Config) *ImportCommand { return &ImportCommand{cfg: cfg} }

// Name implements subcommands.Command.Name.
func (*ImportCommand) Name() string { return "import" }

// Synopsis implements subcommands.Command.Synopsis.
func (*ImportCommand) Synopsis() string { return "Import the signing certificate into the MOK list." }

// Usage implements subcommands.Command.Usage.
func (*ImportCommand) Usage() string { return "import\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (c *ImportCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.debug, "debug", false, "Enable debug mode.")
}

// Execute implements subcommands.Command.Execute.
func (c *ImportCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := runImport(c.cfg)
	record("import", err)
	if err != nil {
		logError(err, c.debug)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func runImport(cfg *config.Config) error {
	if _, err := os.Stat(cfg.CertFile); err != nil {
		return errors.Wrapf(err, "certificate %s not found, generate the key pair first", cfg.CertFile)
	}

	if enabled, err := mok.SecureBootEnabled(); err != nil {
		log.Warnf("Could not determine Secure Boot state: %v", err)
	} else if !enabled {
		log.Warn("Secure Boot is disabled. Enrolling the key is harmless but not required.")
	}

	if enrolled, err := mok.IsEnrolled(cfg.CertFile); err != nil {
		log.Warnf("Could not check MOK enrollment: %v", err)
	} else if enrolled {
		log.Infof("Certificate %s is already enrolled", cfg.CertFile)
		return nil
	}

	if err := mok.ImportCert(cfg.CertFile); err != nil {
		return err
	}
	log.Info("Certificate staged for enrollment. Reboot and finish the enrollment in the MOK manager screen.")
	return nil
}
