package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
	"taskdeck/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	status      string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskdeck add [--desc <text>] [--status todo|in_progress|done] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	ctrl := tasks.New(svc)
	created, err := ctrl.Create(ctx, title, c.description, service.Status(c.status))
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		output.FormatTaskDetail(out, created)
	}
	return exitcode.Success
}
