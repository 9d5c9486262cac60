package dirstat

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"
)

const (
	// Unbounded disables the discovery depth limit.
	Unbounded = -1
	// DefaultTopN is the number of directories reported when Options.TopN is unset.
	DefaultTopN = 10
	// DefaultBuffer is the capacity of the results channel.
	DefaultBuffer = 32
	// DefaultProgressInterval is the default interval for progress updates.
	DefaultProgressInterval = 500 * time.Millisecond
)

// ErrorPolicy decides what happens when a file or directory inside a measured subtree cannot be read.
type ErrorPolicy string

const (
	// PolicyFatal aborts the whole scan on the first read error.
	PolicyFatal ErrorPolicy = "fatal"
	// PolicySkip skips unreadable entries, counts them and keeps summing.
	PolicySkip ErrorPolicy = "skip"
)

// Strategy selects how per-directory totals are computed.
type Strategy string

const (
	// StrategyRescan measures every discovered directory with its own subtree walk.
	StrategyRescan Strategy = "rescan"
	// StrategyAggregate walks the tree once and adds every file to its ancestors.
	StrategyAggregate Strategy = "aggregate"
)

var (
	// ErrNotDirectory is returned when the root is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrInvalidDepth is returned for depth bounds below Unbounded.
	ErrInvalidDepth = errors.New("max recursion cannot be negative")
	// ErrInvalidPolicy is returned for unknown error policies.
	ErrInvalidPolicy = errors.New("invalid error policy")
	// ErrInvalidStrategy is returned for unknown strategies.
	ErrInvalidStrategy = errors.New("invalid strategy")
)

// Options configures directory analysis and CLI behavior.
type Options struct {
	// Path is the root directory to analyze.
	Path string
	// MaxDepth bounds how many levels below the root directories are discovered.
	// 0 discovers only the root, Unbounded removes the limit.
	// It never bounds the subtree that is summed for a discovered directory.
	MaxDepth int
	// TopN is the number of directories to report (0 = DefaultTopN).
	TopN int
	// Workers is the number of concurrent size computations (0 = number of CPUs).
	Workers int
	// Buffer is the capacity of the discovery queue and the results channel (0 = DefaultBuffer).
	Buffer int
	// OnError is the policy for read errors while summing a subtree.
	OnError ErrorPolicy
	// Strategy selects rescan or aggregate computation.
	Strategy Strategy
	// MinSize hides directories smaller than this many bytes from the report.
	MinSize uint64
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
	// DebugWriter receives debug output (default os.Stderr).
	DebugWriter io.Writer
	// Output represents output format (table or json).
	Output string
	// Integration indicates whether to output integration script.
	Integration bool
}

// withDefaults fills unset fields and validates the rest.
func (o Options) withDefaults() (Options, error) {
	if o.Path == "" {
		o.Path = "."
	}

	if o.MaxDepth < Unbounded {
		return o, fmt.Errorf("%w: %d", ErrInvalidDepth, o.MaxDepth)
	}

	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}

	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}

	if o.Buffer <= 0 {
		o.Buffer = DefaultBuffer
	}

	switch o.OnError {
	case "":
		o.OnError = PolicyFatal
	case PolicyFatal, PolicySkip:
	default:
		return o, fmt.Errorf("%w %q: must be %q or %q", ErrInvalidPolicy, o.OnError, PolicyFatal, PolicySkip)
	}

	switch o.Strategy {
	case "":
		o.Strategy = StrategyRescan
	case StrategyRescan, StrategyAggregate:
	default:
		return o, fmt.Errorf("%w %q: must be %q or %q", ErrInvalidStrategy, o.Strategy, StrategyRescan, StrategyAggregate)
	}

	if o.DebugWriter == nil {
		o.DebugWriter = os.Stderr
	}

	return o, nil
}

// withinDepth reports whether a directory at depth is discovered under the bound.
func (o Options) withinDepth(depth int) bool {
	return o.MaxDepth == Unbounded || depth <= o.MaxDepth
}
