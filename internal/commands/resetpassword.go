package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/resetflow"
	"taskdeck/internal/service"
)

func init() {
	Register(&ResetPasswordCmd{})
}

// ResetPasswordCmd implements the reset-password command. It consumes the
// recovery token from a reset email and sets a new password.
type ResetPasswordCmd struct {
	password string
	confirm  string
}

func (c *ResetPasswordCmd) Name() string      { return "reset-password" }
func (c *ResetPasswordCmd) Aliases() []string { return nil }
func (c *ResetPasswordCmd) Synopsis() string  { return "Complete a password reset" }
func (c *ResetPasswordCmd) Usage() string {
	return "taskdeck reset-password [--password <pw>] [--confirm <pw>] <recovery-token>"
}
func (c *ResetPasswordCmd) NeedsAuth() bool { return false }

func (c *ResetPasswordCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *ResetPasswordCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: recovery token required")
		return exitcode.UserError
	}

	flow := resetflow.New(svc)
	if flow.Begin(ctx, args[0]) != resetflow.StateLinkValid {
		fmt.Fprintf(errOut, "error: %s\n", flow.Message())
		return exitcode.AuthError
	}

	password := c.password
	confirmed := c.confirm
	if password == "" {
		var err error
		password, err = prompt(in, errOut, "New password: ")
		if err != nil {
			fmt.Fprintln(errOut, "error: failed to read password")
			return exitcode.UserError
		}
		confirmed, err = prompt(in, errOut, "Confirm password: ")
		if err != nil {
			fmt.Fprintln(errOut, "error: failed to read password")
			return exitcode.UserError
		}
	} else if confirmed == "" {
		confirmed = password
	}

	if err := flow.Submit(ctx, password, confirmed); err != nil {
		if flow.State() == resetflow.StateFailed {
			fmt.Fprintf(errOut, "error: %s\n", flow.Message())
			return exitcode.BackendError
		}
		return fail(errOut, err)
	}

	fmt.Fprintln(out, flow.Message())
	return exitcode.Success
}
