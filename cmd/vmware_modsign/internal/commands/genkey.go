package commands

import (
	"context"
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/config"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/modules"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/signing"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/sysenv"
)

// GenKeyCommand is the subcommand to generate the signing key pair and sign
// the VMware kernel modules with it.
type GenKeyCommand struct {
	cfg   *config.Config
	debug bool
}

// NewGenKeyCommand returns a GenKeyCommand using cfg.
func NewGenKeyCommand(cfg *config.Config) *GenKeyCommand { return &GenKeyCommand{cfg: cfg} }

// Name implements subcommands.Command.Name.
func (*GenKeyCommand) Name() string { return "genkey" }

// Synopsis implements subcommands.Command.Synopsis.
func (*GenKeyCommand) Synopsis() string {
	return "Generate a signing key pair and sign the VMware kernel modules."
}

// Usage implements subcommands.Command.Usage.
func (*GenKeyCommand) Usage() string { return "genkey\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (c *GenKeyCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.debug, "debug", false, "Enable debug mode.")
}

// Execute implements subcommands.Command.Execute.
func (c *GenKeyCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := runGenKey(c.cfg)
	record("genkey", err)
	if err != nil {
		logError(err, c.debug)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func runGenKey(cfg *config.Config) error {
	env, err := sysenv.NewEnv()
	if err != nil {
		return errors.Wrap(err, "failed to read system environment")
	}
	if !env.HasSignFile() {
		return errors.Errorf("sign-file not found at %s, install the linux-headers package for kernel %s",
			env.SignFilePath(), env.KernelRelease())
	}

	kp := signing.NewKeyPair(cfg.KeyFile, cfg.CertFile, cfg.Subject)
	if err := kp.Generate(); err != nil {
		return err
	}
	if fp, err := kp.Fingerprint(); err != nil {
		log.Warnf("failed to compute certificate fingerprint: %v", err)
	} else {
		log.Infof("Certificate SHA-1 fingerprint: %s", fp)
	}

	for _, name := range cfg.Modules {
		path, err := modules.Path(name)
		if err != nil {
			return errors.Wrapf(err, "failed to locate module %s", name)
		}
		if loaded, err := modules.IsLoaded(name); err != nil {
			log.Warnf("Could not check whether %s is loaded: %v", name, err)
		} else if !loaded {
			log.Warnf("Module %s is not currently loaded; signing the file on disk anyway", name)
		}
		if err := modules.Sign(env.SignFilePath(), cfg.HashAlgo, kp.KeyFile, kp.CertFile, path); err != nil {
			return err
		}
		log.Infof("Signed %s (%s)", name, path)
	}
	log.Info("All modules signed. Import the certificate into the MOK list next.")
	return nil
}
