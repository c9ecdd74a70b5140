package dbgtrace

import (
	"errors"
	"fmt"
)

// Error kinds reported by Dispatch. Match them with errors.Is.
var (
	ErrUnknownVariable      = errors.New("unknown global variable")
	ErrInvalidSubcommand    = errors.New("invalid trace subcommand")
	ErrInvalidTrailingToken = errors.New("invalid watch mode")
	ErrMissingVariable      = errors.New("missing variable name")
	ErrUnexpectedToken      = errors.New("unexpected argument")
)

// DispatchError is a recoverable error local to one Dispatch call.
type DispatchError struct {
	Err   error  // one of the Err* kinds
	Token string // offending token or variable name
}

func (e *DispatchError) Error() string {
	switch e.Err {
	case ErrUnknownVariable:
		return fmt.Sprintf("'%s' is not a global variable.", e.Token)
	case ErrInvalidSubcommand:
		return fmt.Sprintf(`expecting "on", "off", "var" or "variable"; got: "%s"`, e.Token)
	case ErrInvalidTrailingToken:
		return fmt.Sprintf(`expecting "stop" or "nostop"; got "%s"`, e.Token)
	case ErrMissingVariable:
		return "expecting a global variable name"
	case ErrUnexpectedToken:
		return fmt.Sprintf(`unexpected argument "%s"`, e.Token)
	default:
		return fmt.Sprintf("trace: %v", e.Err)
	}
}

func (e *DispatchError) Unwrap() error { return e.Err }
