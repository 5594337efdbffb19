// Package main is the program entrance.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"

	"github.com/ThinkCodeCH/vmware-modsign/cmd/vmware_modsign/internal/commands"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/config"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/deps"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/logging"
	"github.com/ThinkCodeCH/vmware-modsign/pkg/utils"
)

var checkRoot = deps.CheckRoot

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	// Nothing may happen before the privilege check, not even creating the
	// log file. logrus still reaches stderr here.
	if err := checkRoot(); err != nil {
		log.Error(err)
		return 1
	}

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Errorf("failed to load configuration: %v", err)
		return 1
	}
	if err := logging.Setup(cfg.LogFile); err != nil {
		log.Errorf("failed to open log file %s: %v", cfg.LogFile, err)
		return 1
	}
	defer logging.Close()

	stdin := bufio.NewReader(os.Stdin)
	if err := deps.EnsureTools(stdin); err != nil {
		log.Error(err)
		return 1
	}

	f := utils.Flock()
	defer f.Close()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(commands.NewMenuCommand(cfg, stdin), "")
	subcommands.Register(commands.NewInstallCommand(), "")
	subcommands.Register(commands.NewGenKeyCommand(cfg), "")
	subcommands.Register(commands.NewVerifyCommand(cfg), "")
	subcommands.Register(commands.NewImportCommand(cfg), "")
	subcommands.Register(commands.NewHistoryCommand(), "")

	ctx := context.Background()
	if flag.NArg() == 0 {
		// No subcommand means the interactive menu.
		return int(commands.NewMenuCommand(cfg, stdin).Execute(ctx, nil))
	}
	return int(subcommands.Execute(ctx))
}
