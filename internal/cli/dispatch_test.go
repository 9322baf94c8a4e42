package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"taskdeck/internal/cli"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/testutil"
)

// testFactory creates a backend factory that returns the given FakeBackend.
func testFactory(svc *testutil.FakeBackend) cli.BackendFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Backend, error) {
		return svc, nil
	}
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TASKDECK_BACKEND_URL", "https://example.supabase.co")
	t.Setenv("TASKDECK_ANON_KEY", "anon-key")
	t.Setenv("TASKDECK_STATE_DIR", t.TempDir())
}

func run(t *testing.T, svc *testutil.FakeBackend, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	setupEnv(t)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, strings.NewReader(""), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeBackend(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeBackend(), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, _, code := run(t, testutil.NewFakeBackend(), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected usage output")
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	svc := testutil.NewFakeBackend()
	uid := svc.AddUser("ada@example.com", "hunter22", "ada")
	svc.SetCurrent("ada@example.com")
	svc.AddTask(uid, "buy milk", service.StatusTodo)

	stdout, stderr, code := run(t, svc)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if !strings.Contains(stdout, "buy milk") {
		t.Errorf("expected task listing, got %q", stdout)
	}
}

func TestDispatcher_AuthRequired(t *testing.T) {
	svc := testutil.NewFakeBackend()

	_, stderr, code := run(t, svc, "list")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "not logged in") {
		t.Errorf("expected not logged in error, got %q", stderr)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	svc := testutil.NewFakeBackend()
	svc.AddUser("ada@example.com", "hunter22", "ada")
	svc.SetCurrent("ada@example.com")

	_, stderr, code := run(t, svc, "list", "--bogus")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "unknown flag: -bogus") {
		t.Errorf("expected unknown flag error, got %q", stderr)
	}
}

func TestDispatcher_VersionNeedsNoAuth(t *testing.T) {
	stdout, _, code := run(t, testutil.NewFakeBackend(), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "taskdeck ") {
		t.Errorf("expected version output, got %q", stdout)
	}
}
