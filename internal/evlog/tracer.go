package evlog

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives debugger events. Implementations must be safe for
// concurrent use: `vmdb check` replays cases in parallel into one log.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff.
	Enabled() bool
}

// StorageMode selects where events go: written out as they happen, kept
// per session in memory, or both.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1
	ModeRing
	ModeBoth
)

var modeNames = map[StorageMode]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m StorageMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode converts a [log] mode value. The empty string means stream.
func ParseMode(s string) (StorageMode, error) {
	s = strings.ToLower(s)
	if s == "" {
		return ModeStream, nil
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// defaultRecorderSize is the per-session history kept when RingSize is unset.
const defaultRecorderSize = 4096

// Config describes the event log of one vmdb invocation.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks from the OutputPath extension
	Output     io.Writer // overrides OutputPath when set
	OutputPath string    // "-" or "" for stderr
	RingSize   int       // events kept per session by the recorder
}

// New builds the tracer cfg describes. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode == 0 {
		cfg.Mode = ModeStream
	}
	if _, ok := modeNames[cfg.Mode]; !ok {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	var rec *Recorder
	if cfg.Mode != ModeStream {
		rec = NewRecorder(cfg.RingSize, cfg.Level)
	}
	if cfg.Mode == ModeRing {
		return rec, nil
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	stream := NewStreamTracer(w, cfg.Level, resolveFormat(cfg.Format, cfg.OutputPath))
	if rec == nil {
		return stream, nil
	}
	return &tee{stream: stream, rec: rec, level: cfg.Level}, nil
}

// resolveFormat maps FormatAuto to a concrete format: .ndjson and .msgpack
// outputs get those encodings, everything else text.
func resolveFormat(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	switch {
	case strings.HasSuffix(path, ".ndjson"):
		return FormatNDJSON
	case strings.HasSuffix(path, ".msgpack"):
		return FormatMsgpack
	default:
		return FormatText
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return stderrWriter{}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output: %w", err)
	}
	return f, nil
}

// stderrWriter writes to os.Stderr without exposing Close.
type stderrWriter struct{}

func (stderrWriter) Write(p []byte) (int, error) { return os.Stderr.Write(p) }
