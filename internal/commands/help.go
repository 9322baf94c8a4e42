package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskdeck help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskdeck                                           List your tasks
  taskdeck list [common flags] [--status todo|in_progress|done]
  taskdeck add [common flags] [--desc <text>] [--status <s>] <title...>
  taskdeck edit [common flags] [--title <text>] [--desc <text>] [--status <s>] <ref>
  taskdeck done [common flags] <ref>
  taskdeck rm [common flags] [--yes] <ref>
  taskdeck login [common flags] [--password <pw>] <email-or-username>
  taskdeck logout [common flags]
  taskdeck signup [common flags] [--username <name>] [--password <pw>] <email>
  taskdeck whoami [common flags]
  taskdeck recover <email>
  taskdeck reset-password [--password <pw>] [--confirm <pw>] <recovery-token>
  taskdeck help
  taskdeck version

Task references are the numbers printed by the list command, newest task
first.

Common flags:
  --config <dir>   Override state directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
