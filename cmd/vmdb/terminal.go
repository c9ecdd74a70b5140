package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const historyFile = ".vmdb_history"

// terminal reads debugger commands with line editing and history.
type terminal struct {
	line    *liner.State
	history string
}

func newTerminal() *terminal {
	t := &terminal{line: liner.NewLiner()}
	t.line.SetCtrlCAborts(true)
	if home, err := os.UserHomeDir(); err == nil {
		t.history = filepath.Join(home, historyFile)
		if f, err := os.Open(t.history); err == nil {
			_, _ = t.line.ReadHistory(f) //nolint:errcheck
			f.Close()
		}
	}
	return t
}

// ReadLine prompts for one command. Ctrl-C and Ctrl-D end input.
func (t *terminal) ReadLine(prompt string) (string, error) {
	s, err := t.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		return "", err
	}
	if strings.TrimSpace(s) != "" {
		t.line.AppendHistory(s)
	}
	return s, nil
}

func (t *terminal) Close() error {
	if t.history != "" {
		if f, err := os.Create(t.history); err == nil {
			_, _ = t.line.WriteHistory(f) //nolint:errcheck
			f.Close()
		}
	}
	return t.line.Close()
}
