package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vmdb/internal/config"
	"vmdb/internal/evlog"
)

// setupLogging builds the event log from [log] with root flags taking
// precedence, and attaches it to the command context.
func setupLogging(cmd *cobra.Command, cfg config.Config) (evlog.Tracer, func(), error) {
	root := cmd.Root().PersistentFlags()
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"log", &cfg.Log.Output},
		{"log-level", &cfg.Log.Level},
		{"log-mode", &cfg.Log.Mode},
		{"log-format", &cfg.Log.Format},
	}
	for _, o := range overrides {
		if !root.Changed(o.flag) {
			continue
		}
		v, err := root.GetString(o.flag)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get %s flag: %w", o.flag, err)
		}
		*o.dst = v
	}
	// An explicit output with no level means "log commands".
	if root.Changed("log") && !root.Changed("log-level") && cfg.Log.Level == "off" {
		cfg.Log.Level = "command"
	}

	tc, err := cfg.TracerConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log configuration: %w", err)
	}
	if tc.Level == evlog.LevelOff {
		cmd.SetContext(evlog.WithTracer(cmd.Context(), evlog.Nop))
		return evlog.Nop, func() {}, nil
	}

	tracer, err := evlog.New(tc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create event log: %w", err)
	}
	cmd.SetContext(evlog.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "log: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "log: close error: %v\n", err)
		}
	}
	return tracer, cleanup, nil
}

// dumpRing writes the recent events of each session, if the log keeps them.
func dumpRing(t evlog.Tracer, w io.Writer) {
	rec := evlog.RecorderOf(t)
	if rec == nil {
		return
	}
	fmt.Fprintln(w, "recent events:")
	if err := rec.Dump(w, evlog.FormatText); err != nil {
		fmt.Fprintf(w, "log: dump error: %v\n", err)
	}
}
