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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskdeck rm [--yes] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	ctrl, task, err := resolveTask(ctx, svc, args)
	if err != nil {
		return fail(errOut, err)
	}

	if !c.yes {
		if !confirm(in, errOut, fmt.Sprintf("delete %q?", task.Title)) {
			fmt.Fprintln(errOut, "cancelled")
			return exitcode.UserError
		}
	}

	if err := ctrl.Delete(ctx, task.ID); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "deleted")
	}
	return exitcode.Success
}
