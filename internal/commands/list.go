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
	"taskdeck/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	status string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List your tasks" }
func (c *ListCmd) Usage() string     { return "taskdeck list [--status todo|in_progress|done]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	var status service.Status
	if c.status != "" {
		status = service.Status(c.status)
		if !status.Valid() {
			fmt.Fprintf(errOut, "error: unknown status: %s\n", c.status)
			return exitcode.UserError
		}
	}

	ctrl := tasks.New(svc)
	if err := ctrl.LoadAll(ctx); err != nil {
		return fail(errOut, err)
	}

	items := ctrl.Snapshot()
	if status != "" {
		items = ctrl.Filter(status)
	}

	if len(items) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks")
		}
		return exitcode.Success
	}

	// Numbers always count positions in the full collection so references
	// stay stable whether or not a filter is applied.
	position := make(map[string]int, len(ctrl.Snapshot()))
	for i, t := range ctrl.Snapshot() {
		position[t.ID] = i + 1
	}
	for _, t := range items {
		output.FormatTask(out, position[t.ID], t)
	}
	return exitcode.Success
}
