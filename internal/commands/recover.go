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
	Register(&RecoverCmd{})
}

// RecoverCmd implements the recover command, which requests a password
// reset email.
type RecoverCmd struct{}

func (c *RecoverCmd) Name() string      { return "recover" }
func (c *RecoverCmd) Aliases() []string { return []string{"forgot-password"} }
func (c *RecoverCmd) Synopsis() string  { return "Request a password reset email" }
func (c *RecoverCmd) Usage() string     { return "taskdeck recover <email>" }
func (c *RecoverCmd) NeedsAuth() bool   { return false }

func (c *RecoverCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RecoverCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}

	store := session.New(svc)
	confirmation, err := store.RequestPasswordReset(ctx, args[0])
	if err != nil {
		return fail(errOut, err)
	}

	fmt.Fprintln(out, confirmation)
	return exitcode.Success
}
