package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"vmdb/internal/dbgtrace"
	"vmdb/internal/evlog"
	"vmdb/internal/vm"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <dir>",
	Short: "Replay recorded debugger sessions and compare their output",
	Long: `For every <name>.tn with a sibling <name>.script in dir, replay the script
and compare stdout with <name>.out (and stderr with <name>.err when present).`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel cases (0 = GOMAXPROCS)")
}

type checkResult struct {
	Name string
	Diff string // "" when the case passed
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir := args[0]

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return err
	}
	mode, err := cfg.WatchMode()
	if err != nil {
		return err
	}
	log, cleanup, err := setupLogging(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := checkDir(cmd.Context(), dir, jobs, mode, log)
	if err != nil {
		return err
	}
	if failed := printCheckResults(cmd.OutOrStdout(), results); failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d cases failed\n", failed, len(results))
		return &exitError{code: 1}
	}
	return nil
}

// checkDir replays every case in dir. Each case gets its own VM and session.
func checkDir(ctx context.Context, dir string, jobs int, mode dbgtrace.WatchMode, log evlog.Tracer) ([]checkResult, error) {
	cases, err := vm.FindCases(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no cases found in %s", dir)
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]checkResult, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(cases)))

	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := checkCase(c, mode, log)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkCase(c vm.Case, mode dbgtrace.WatchMode, log evlog.Tracer) (checkResult, error) {
	got, err := vm.Replay(c, mode, log)
	if err != nil {
		return checkResult{}, err
	}
	wantOut, err := os.ReadFile(c.Out)
	if err != nil {
		return checkResult{}, fmt.Errorf("read expected output: %w", err)
	}
	res := checkResult{Name: c.Name}
	if d := firstDiff("stdout", string(wantOut), got.Stdout); d != "" {
		res.Diff = d
		return res, nil
	}
	if c.Err != "" {
		wantErr, err := os.ReadFile(c.Err)
		if err != nil {
			return checkResult{}, fmt.Errorf("read expected stderr: %w", err)
		}
		res.Diff = firstDiff("stderr", string(wantErr), got.Stderr)
	}
	return res, nil
}

// firstDiff describes the first differing line, or returns "".
func firstDiff(stream, want, got string) string {
	if want == got {
		return ""
	}
	wl := strings.Split(want, "\n")
	gl := strings.Split(got, "\n")
	for i, n := 0, max(len(wl), len(gl)); i < n; i++ {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if w != g || i >= len(wl) || i >= len(gl) {
			return fmt.Sprintf("%s line %d: want %q, got %q", stream, i+1, w, g)
		}
	}
	return stream + " differs"
}

func printCheckResults(out io.Writer, results []checkResult) int {
	failed := 0
	for _, r := range results {
		if r.Diff == "" {
			fmt.Fprintf(out, "ok   %s\n", r.Name)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL %s\n     %s\n", r.Name, r.Diff)
	}
	return failed
}
