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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles: running it on a done
// task moves the task back to to do.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task between done and to do" }
func (c *DoneCmd) Usage() string     { return "taskdeck done <ref>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	ctrl, task, err := resolveTask(ctx, svc, args)
	if err != nil {
		return fail(errOut, err)
	}

	updated, err := ctrl.ToggleStatus(ctx, task.ID)
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "%s %s\n", output.StatusMarker(updated.Status), updated.Title)
	}
	return exitcode.Success
}
