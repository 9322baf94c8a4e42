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
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Print the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "taskdeck whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	user, err := svc.RestoreSession(ctx)
	if err != nil {
		return fail(errOut, err)
	}

	if user.Username != "" {
		fmt.Fprintf(out, "%s (%s)\n", user.Email, user.Username)
	} else {
		fmt.Fprintln(out, user.Email)
	}
	return exitcode.Success
}
