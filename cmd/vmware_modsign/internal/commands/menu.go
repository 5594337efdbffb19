package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/subcommands"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/config"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/utils"
)

// MenuCommand runs the interactive menu. It is also what a bare invocation
// of vmware_modsign runs.
type MenuCommand struct {
	cfg   *config.Config
	in    *bufio.Reader
	debug bool
}

// NewMenuCommand returns a MenuCommand reading selections from in.
func NewMenuCommand(cfg *config.Config, in *bufio.Reader) *MenuCommand {
	return &MenuCommand{cfg: cfg, in: in}
}

// Name implements subcommands.Command.Name.
func (*MenuCommand) Name() string { return "menu" }

// Synopsis implements subcommands.Command.Synopsis.
func (*MenuCommand) Synopsis() string { return "Run the interactive menu." }

// Usage implements subcommands.Command.Usage.
func (*MenuCommand) Usage() string { return "menu\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (c *MenuCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.debug, "debug", false, "Enable debug mode.")
}

// Execute implements subcommands.Command.Execute. It loops until the user
// picks the exit option. Handler failures are logged and the menu continues.
func (c *MenuCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	for {
		c.printMenu()
		fmt.Print("Select an option: ")
		choice, err := utils.ReadLine(c.in)
		if err != nil {
			// Stdin is gone; there is nothing left to read selections from.
			logError(err, c.debug)
			return subcommands.ExitFailure
		}
		switch choice {
		case "1":
			c.runAction("install", runInstall)
		case "2":
			c.runAction("genkey", func() error { return runGenKey(c.cfg) })
		case "3":
			c.runAction("verify", func() error { return runVerify(c.cfg) })
		case "4":
			c.runAction("import", func() error { return runImport(c.cfg) })
		case "5":
			fmt.Println("Bye.")
			return subcommands.ExitSuccess
		default:
			color.Red("Invalid option %q", choice)
		}
	}
}

func (c *MenuCommand) printMenu() {
	fmt.Println()
	color.Cyan("================================================")
	color.Cyan("   VMware module signing for Secure Boot")
	color.Cyan("================================================")
	fmt.Println("  1) Install dependencies and build the VMware modules")
	fmt.Println("  2) Generate a signing key and sign the modules")
	fmt.Println("  3) Verify module signatures")
	fmt.Println("  4) Import the certificate into the MOK list")
	fmt.Println("  5) Exit")
}

func (c *MenuCommand) runAction(name string, fn func() error) {
	err := fn()
	record(name, err)
	if err != nil {
		logError(err, c.debug)
		color.Red("%s failed", name)
	} else {
		color.Green("%s finished", name)
	}
	fmt.Print("Press Enter to continue...")
	// Acknowledgment only; discard whatever was typed.
	c.in.ReadString('\n')
}
