package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// runCLI executes a fresh copy of the run command so flag state does not
// leak between tests.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := &cobra.Command{Use: "vmdb", SilenceUsage: true, SilenceErrors: true}
	addRootFlags(root.PersistentFlags())
	run := &cobra.Command{Use: runCmd.Use, Args: runCmd.Args, RunE: runCmd.RunE}
	addRunFlags(run.Flags())
	root.AddCommand(run)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"run", "--color=off"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunPlainTrace(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "main.tn", "$a = 2\nprint $a * 3\n")
	stdout, stderr, err := runCLI(t, "--trace", "--basename", prog)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr)
	}
	want := "line tracing is on.\nTracing: main.tn:1 $a = 2\nTracing: main.tn:2 print $a * 3\n6\n"
	if stdout != want {
		t.Fatalf("stdout:\nwant %q\ngot  %q", want, stdout)
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "main.tn", "$a = 1\n$a = 2\nprint $a\n")
	script := writeFile(t, dir, "main.script", "next\ntrace var a stop\ncont\nquit\n")
	stdout, _, err := runCLI(t, "--basename", "--script", script, prog)

	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 125 {
		t.Fatalf("want exit 125, got %v", err)
	}
	for _, want := range []string{
		"step: main.tn:2 $a = 2",
		"traced global variable 'a' has value '2'",
		"stopped: traced global variable 'a' changed",
		"at main.tn:3 print $a",
	} {
		if !strings.Contains(stdout, want+"\n") {
			t.Fatalf("missing %q in:\n%s", want, stdout)
		}
	}
}

func TestRunConfigWatchDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vmdb.toml", "[debug]\nwatch_default = \"stop\"\nbasename = true\n")
	prog := writeFile(t, dir, "main.tn", "$a = 1\n$a = 2\nprint $a\n")
	stdout, _, err := runCLI(t, "--ex", "next", "--ex", "trace var a", "--ex", "cont", "--ex", "quit", prog)

	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 125 {
		t.Fatalf("want exit 125, got %v", err)
	}
	if !strings.Contains(stdout, "at main.tn:3 print $a\n") {
		t.Fatalf("config default mode not applied:\n%s", stdout)
	}
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()

	prog := writeFile(t, dir, "exit.tn", "exit 7\n")
	_, _, err := runCLI(t, prog)
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 7 {
		t.Fatalf("want exit 7, got %v", err)
	}

	prog = writeFile(t, dir, "panic.tn", "print 1 % 0\n")
	_, stderr, err := runCLI(t, "--basename", prog)
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("want exit 1, got %v", err)
	}
	if stderr != "panic VM1007: modulo by zero\nat panic.tn:1 print 1 % 0\n" {
		t.Fatalf("stderr: %q", stderr)
	}
}

func TestRunFailureDumpsRecentEvents(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "zero.tn", "$n = 0\n$x = 10 / $n\n")
	_, stderr, err := runCLI(t, "--basename", "--trace", "--log-mode", "ring", "--log-level", "debug", prog)
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("want exit 1, got %v", err)
	}
	for _, want := range []string{
		"panic VM1007: division by zero\n",
		"recent events:\n",
		"→ session run\n",
		"• line line ($n = 0)",
		"• line line ($x = 10 / $n)",
		"← session run (",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestRunFailureWithoutRecorder(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "zero.tn", "print 1 / 0\n")
	_, stderr, _ := runCLI(t, "--basename", "--log-mode", "stream", "--log", os.DevNull, prog)
	if strings.Contains(stderr, "recent events:") {
		t.Fatalf("stream-only log must not dump:\n%s", stderr)
	}
}

func TestRunParseError(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "bad.tn", "print (1\n")
	_, _, err := runCLI(t, prog)
	if err == nil || !strings.Contains(err.Error(), "bad.tn:1:") {
		t.Fatalf("want parse error, got %v", err)
	}
}
