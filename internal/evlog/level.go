package evlog

import "fmt"

// Level controls logging verbosity.
type Level uint8

const (
	// LevelOff disables logging.
	LevelOff     Level = iota // no logging
	LevelError                // only explicit dumps
	LevelCommand              // session + command boundaries
	LevelWatch                // watch reports and stop requests
	LevelDebug                // everything including line notifications
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelCommand:
		return "command"
	case LevelWatch:
		return "watch"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF", "":
		return LevelOff, nil
	case "error", "ERROR":
		return LevelError, nil
	case "command", "COMMAND":
		return LevelCommand, nil
	case "watch", "WATCH":
		return LevelWatch, nil
	case "debug", "DEBUG":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid log level: %q (expected: off|error|command|watch|debug)", s)
	}
}

// ShouldEmit returns true if the given scope should emit at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelOff, LevelError:
		return false
	case LevelCommand:
		return scope <= ScopeCommand
	case LevelWatch:
		return scope <= ScopeWatch
	case LevelDebug:
		return true
	}
	return false
}
