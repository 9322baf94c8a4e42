package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Sign out and discard the stored session" }
func (c *LogoutCmd) Usage() string     { return "taskdeck logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	store := session.New(svc)
	if snap := store.Initialize(ctx); !snap.Authenticated {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}
	if err := store.Logout(ctx); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "logged out")
	}
	return exitcode.Success
}
