package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestBanner(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	if got := Banner(false); got != "vmdb 1.2.3" {
		t.Errorf("Banner(false) = %q", got)
	}
	colored := Banner(true)
	if !strings.Contains(colored, "\x1b[") {
		t.Errorf("Banner(true) has no escape codes: %q", colored)
	}
	if !strings.Contains(colored, "1") || !strings.Contains(colored, ".2.3") {
		t.Errorf("Banner(true) lost version parts: %q", colored)
	}

	Version = ""
	if got := Banner(false); got != "vmdb dev" {
		t.Errorf("empty version: %q", got)
	}
}
