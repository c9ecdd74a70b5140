package version

import "github.com/fatih/color"

// Version information for the vmdb CLI.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the semantic version of the CLI.
	Version = "0.3.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Banner renders the version for terminals, the major part highlighted.
func Banner(useColor bool) string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if !useColor {
		return "vmdb " + v
	}
	major, rest := v, ""
	for i := 0; i < len(v); i++ {
		if v[i] == '.' {
			major, rest = v[:i], v[i:]
			break
		}
	}
	maj := color.New(color.FgYellow, color.Bold)
	res := color.New(color.FgGreen)
	maj.EnableColor()
	res.EnableColor()
	return "vmdb " + maj.Sprint(major) + res.Sprint(rest)
}
