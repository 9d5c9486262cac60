package dirstat

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// ProgressHook receives the number of measured and discovered directories.
type ProgressHook func(measured, discovered int64)

// logger provides conditional debug output.
type logger struct {
	enabled bool
	w       io.Writer
}

// printf prints debug output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled {
		fmt.Fprintf(l.w, format, args...)
	}
}

// progress counts directories for the progress reporter.
type progress struct {
	discovered atomic.Int64
	measured   atomic.Int64
}

// startProgressReporter invokes hook(measured, discovered) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, p *progress, hook ProgressHook, interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(p.measured.Load(), p.discovered.Load())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run measures every directory discovered under opt.Path within opt.MaxDepth levels
// and returns the largest opt.TopN of them.
//
// Each directory's size covers its whole subtree, regardless of opt.MaxDepth.
// Under PolicyFatal the first read error aborts the scan and no report is returned.
// Progress updates are sent to progressHook if provided.
func Run(ctx context.Context, opt Options, progressHook ProgressHook) (*Report, error) {
	opt, err := opt.withDefaults()
	if err != nil {
		return nil, err
	}

	log := logger{enabled: opt.Debug, w: opt.DebugWriter}

	// filepath.Clean handles both separators and converts to native format
	opt.Path = filepath.Clean(opt.Path)

	// validate path exists and is accessible
	if statInfo, err := os.Stat(opt.Path); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("path %q: %w", opt.Path, ErrNotDirectory)
	}

	log.printf("[debug]: root: %s\n", opt.Path)
	log.printf("[debug]: max recursion: %d\n", opt.MaxDepth)
	log.printf("[debug]: strategy: %s, workers: %d, buffer: %d, on error: %s\n",
		opt.Strategy, opt.Workers, opt.Buffer, opt.OnError)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var prog progress

	startProgressReporter(ctx, &prog, progressHook, opt.ProgressInterval)

	start := time.Now()

	var (
		results  []SizeResult
		failures int
	)

	switch opt.Strategy {
	case StrategyAggregate:
		results, failures, err = aggregate(ctx, opt, log, &prog)
	default:
		results, failures, err = dispatch(ctx, opt, log, &prog)
	}

	if err != nil {
		return nil, err
	}

	report := &Report{
		Root:        opt.Path,
		Directories: len(results),
		Failures:    failures,
		Strategy:    opt.Strategy,
		TopN:        opt.TopN,
	}

	report.Entries = Rank(filterMin(results, opt.MinSize), opt.TopN)
	report.Elapsed = time.Since(start)

	log.printf("[debug]: measured %s directories in %v (%s unreadable entries skipped)\n",
		humanize.Comma(int64(report.Directories)), report.Elapsed, humanize.Comma(int64(failures)))

	if usage, err := FilesystemUsage(opt.Path); err != nil {
		log.printf("[debug]: filesystem usage unavailable: %v\n", err)
	} else {
		report.Filesystem = usage

		log.printf("[debug]: filesystem %s: %s used of %s\n",
			usage.Fstype, humanize.IBytes(usage.Used), humanize.IBytes(usage.Total))
	}

	return report, nil
}

// dispatch discovers directories and measures each on a bounded pool of workers.
// The calling goroutine is the only reader of the results channel and the only
// owner of the collected slice.
func dispatch(ctx context.Context, opt Options, log logger, prog *progress) ([]SizeResult, int, error) {
	g, ctx := errgroup.WithContext(ctx)

	dirs := make(chan string, opt.Buffer)
	results := make(chan SizeResult, opt.Buffer)

	g.Go(func() error {
		defer close(dirs)

		return walkDirs(ctx, opt.Path, opt.MaxDepth, log, func(dir string) error {
			prog.discovered.Add(1)

			select {
			case dirs <- dir:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	var (
		workers  sync.WaitGroup
		failures atomic.Int64
	)

	for range opt.Workers {
		workers.Add(1)

		g.Go(func() error {
			defer workers.Done()

			for dir := range dirs {
				size, skipped, err := DirSize(ctx, dir, opt.OnError)
				if err != nil {
					return err
				}

				if skipped > 0 {
					log.printf("[debug]: %s: skipped %d unreadable entries\n", dir, skipped)
					failures.Add(int64(skipped))
				}

				select {
				case results <- SizeResult{Path: dir, Size: size}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			return nil
		})
	}

	// No further results once every worker has returned.
	go func() {
		workers.Wait()
		close(results)
	}()

	collected := make([]SizeResult, 0, opt.Buffer)

	for result := range results {
		collected = append(collected, result)
		prog.measured.Add(1)
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return collected, int(failures.Load()), nil
}
