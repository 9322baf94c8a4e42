package commands_test

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/testutil"
)

// runCommand is a helper to run a command with a FakeBackend.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeBackend, args []string, stdin string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		StateDir: t.TempDir(),
		Quiet:    quiet,
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, args, strings.NewReader(stdin), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// newFlagSet registers and parses a command's flags, as the dispatcher would.
func newFlagSet(t *testing.T, cmd commands.Command, args []string) {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
}

func seedUser(svc *testutil.FakeBackend) string {
	id := svc.AddUser("ada@example.com", "hunter22", "ada")
	svc.SetCurrent("ada@example.com")
	return id
}

func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskdeck 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("help output should contain 'Usage:'")
	}
}

func TestListCommand(t *testing.T) {
	svc := testutil.NewFakeBackend()
	uid := seedUser(svc)
	svc.AddTask(uid, "buy milk", service.StatusTodo)
	svc.AddTask(uid, "write report", service.StatusDone)

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	// Newest first
	expected := "   1  [x] write report\n   2  [ ] buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_StatusFilterKeepsNumbers(t *testing.T) {
	svc := testutil.NewFakeBackend()
	uid := seedUser(svc)
	svc.AddTask(uid, "buy milk", service.StatusTodo)
	svc.AddTask(uid, "write report", service.StatusDone)

	cmd := &commands.ListCmd{}
	newFlagSet(t, cmd, []string{"--status", "todo"})

	stdout, _, code := runCommand(t, cmd, svc, nil, "", false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}

	// buy milk keeps position 2 from the unfiltered view
	expected := "   2  [ ] buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_UnknownStatus(t *testing.T) {
	svc := testutil.NewFakeBackend()
	seedUser(svc)

	cmd := &commands.ListCmd{}
	newFlagSet(t, cmd, []string{"--status", "blocked"})

	_, stderr, code := runCommand(t, cmd, svc, nil, "", false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "unknown status") {
		t.Errorf("expected unknown status error, got %q", stderr)
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeBackend()
	seedUser(svc)

	cmd := &commands.ListCmd{}
	stdout, _, code := runCommand(t, cmd, svc, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks\n" {
		t.Errorf("expected no tasks message, got %q", stdout)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeBackend()
	seedUser(svc)
	svc.ListTasksErr = service.ErrBackend

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, "", false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout on failure, got %q", stdout)
	}
	if stderr == "" {
		t.Error("expected error output")
	}
}

func TestAddCommand(t *testing.T) {
	svc := testutil.NewFakeBackend()
	uid := seedUser(svc)

	cmd := &commands.AddCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"buy", "milk"}, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "buy milk") {
		t.Errorf("expected created task in output, got %q", stdout)
	}

	ctx := context.Background()
	items, err := svc.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(items) != 1 || items[0].Title != "buy milk" {
		t.Errorf("expected one task titled 'buy milk', got %+v", items)
	}
	if items[0].UserID != uid {
		t.Errorf("task should belong to the current user")
	}
}

func TestAddCommand_TitleRequired(t *testing.T) {
	svc := testutil.NewFakeBackend()
	seedUser(svc)

	cmd := &commands.AddCmd{}
	_, stderr, code := runCommand(t, cmd, svc, nil, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "title required") {
		t.Errorf("expected title required error, got %q", stderr)
	}
}

func TestAddCommand_TitleTooLong(t *testing.T) {
	svc := testutil.NewFakeBackend()
	seedUser(svc)

	cmd := &commands.AddCmd{}
	long := strings.Repeat("x", service.MaxTitleLen+1)
	_, stderr, code := runCommand(t, cmd, svc, []string{long}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "title") {
		t.Errorf("expected title length error, got %q", stderr)
	}

	items, _ := svc.ListTasks(context.Background())
	if len(items) != 0 {
		t.Error("nothing should reach the backend when validation fails")
	}
}

func TestDoneCommand_Toggles(t *testing.T) {
	svc := testutil.NewFakeBackend()
	uid := seedUser(svc)
	svc.AddTask(uid, "buy milk", service.StatusTodo)

	cmd := &commands.DoneCmd{}
	stdout, _, code := runCommand(t, cmd, svc, []string{"1"}, "", false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "[x]") {
		t.Errorf("expected done marker, got %q", stdout)
	}

	// Second toggle brings it back to todo
	cmd = &commands.DoneCmd{}
	stdout, _, code = runCommand(t, cmd, svc, []string{"1"}, "", false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "[ ]") {
		t.Errorf("expected todo marker after second toggle, got %q", stdout)
	}
}

func TestDoneCommand_UnknownRef(t *testing.T) {
	svc := testutil.NewFakeBackend()
	seedUser(svc)

	cmd := &commands.DoneCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"7"}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "no task 7") {
		t.Errorf("expected unknown task error, got %q", stderr)
	}
}

func TestEditCommand(t *testing.T) {
	svc := testutil.NewFakeBackend()
	uid := seedUser(svc)
	svc.AddTask(uid, "buy milk", service.StatusTodo)

	cmd := &commands.EditCmd{}
	newFlagSet(t, cmd, []string{"--title", "buy oat milk", "--status", "in_progress"})

	stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, "", false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if !strings.Contains(stdout, "buy oat milk") {
		t.Errorf("expected updated title in output, got %q", stdout)
	}

	items, _ := svc.ListTasks(context.Background())
	if items[0].Title != "buy oat milk" || items[0].Status != service.StatusInProgress {
		t.Errorf("update not applied: %+v", items[0])
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	svc := testutil.NewFakeBackend()
	uid := seedUser(svc)
	svc.AddTask(uid, "buy milk", service.StatusTodo)

	cmd := &commands.EditCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "nothing to change") {
		t.Errorf("expected nothing to change error, got %q", stderr)
	}
}

func TestRmCommand_Confirmed(t *testing.T) {
	svc := testutil.NewFakeBackend()
	uid := seedUser(svc)
	svc.AddTask(uid, "buy milk", service.StatusTodo)

	cmd := &commands.RmCmd{}
	stdout, _, code := runCommand(t, cmd, svc, []string{"1"}, "y\n", false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "deleted") {
		t.Errorf("expected deleted confirmation, got %q", stdout)
	}

	items, _ := svc.ListTasks(context.Background())
	if len(items) != 0 {
		t.Error("task should be gone")
	}
}

func TestRmCommand_Declined(t *testing.T) {
	svc := testutil.NewFakeBackend()
	uid := seedUser(svc)
	svc.AddTask(uid, "buy milk", service.StatusTodo)

	cmd := &commands.RmCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, "n\n", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "cancelled") {
		t.Errorf("expected cancelled message, got %q", stderr)
	}

	items, _ := svc.ListTasks(context.Background())
	if len(items) != 1 {
		t.Error("task should still exist")
	}
}

func TestWhoamiCommand(t *testing.T) {
	svc := testutil.NewFakeBackend()
	seedUser(svc)

	cmd := &commands.WhoamiCmd{}
	stdout, _, code := runCommand(t, cmd, svc, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ada@example.com (ada)\n" {
		t.Errorf("unexpected whoami output: %q", stdout)
	}
}
