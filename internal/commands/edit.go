package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       string
	description string
	status      string

	titleSet bool
	descSet  bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's title, description or status" }
func (c *EditCmd) Usage() string {
	return "taskdeck edit [--title <text>] [--desc <text>] [--status todo|in_progress|done] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Func("title", "", func(v string) error {
		c.title = v
		c.titleSet = true
		return nil
	})
	fs.Func("desc", "", func(v string) error {
		c.description = v
		c.descSet = true
		return nil
	})
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	patch := service.TaskPatch{}
	if c.titleSet {
		patch.Title = &c.title
	}
	if c.descSet {
		patch.Description = &c.description
	}
	if c.status != "" {
		status := service.Status(c.status)
		patch.Status = &status
	}
	if patch.Empty() {
		fmt.Fprintln(errOut, "error: nothing to change, pass --title, --desc or --status")
		return exitcode.UserError
	}

	ctrl, task, err := resolveTask(ctx, svc, args)
	if err != nil {
		return fail(errOut, err)
	}

	updated, err := ctrl.Update(ctx, task.ID, patch)
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		output.FormatTaskDetail(out, updated)
	}
	return exitcode.Success
}
