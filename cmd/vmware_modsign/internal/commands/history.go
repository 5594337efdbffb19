package commands

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/subcommands"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/history"
)

// HistoryCommand is the subcommand to list recorded signing actions.
type HistoryCommand struct {
	debug bool
}

// NewHistoryCommand returns a HistoryCommand.
func NewHistoryCommand() *HistoryCommand { return &HistoryCommand{} }

// Name implements subcommands.Command.Name.
func (*HistoryCommand) Name() string { return "history" }

// Synopsis implements subcommands.Command.Synopsis.
func (*HistoryCommand) Synopsis() string { return "List recorded signing actions." }

// Usage implements subcommands.Command.Usage.
func (*HistoryCommand) Usage() string { return "history\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (c *HistoryCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.debug, "debug", false, "Enable debug mode.")
}

// Execute implements subcommands.Command.Execute.
func (c *HistoryCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := history.Open(history.DefaultPath)
	if err != nil {
		logError(err, c.debug)
		return subcommands.ExitFailure
	}
	defer s.Close()

	events, err := s.List()
	if err != nil {
		logError(err, c.debug)
		return subcommands.ExitFailure
	}
	if len(events) == 0 {
		fmt.Println("No recorded actions.")
		return subcommands.ExitSuccess
	}
	for _, e := range events {
		status := color.GreenString("ok")
		if !e.OK {
			status = color.RedString("failed")
		}
		fmt.Printf("%s  %-8s %-6s %s\n", e.Time.Local().Format(time.RFC3339), e.Action, status, e.Detail)
	}
	return subcommands.ExitSuccess
}
