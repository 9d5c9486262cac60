package dirstat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// DirSize returns the apparent size in bytes of all regular files below dir, at any depth.
// Symlinks are not followed and not counted.
//
// Under PolicyFatal the first read error is returned. Under PolicySkip unreadable entries
// are counted in failures and the sum continues.
func DirSize(ctx context.Context, dir string, policy ErrorPolicy) (size uint64, failures int, err error) {
	var (
		total   atomic.Uint64
		skipped atomic.Int64
	)

	conf := &fastwalk.Config{
		Follow: false,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, dir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			if policy == PolicySkip {
				skipped.Add(1)

				return nil
			}

			return fmt.Errorf("reading %q: %w", path, err)
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if policy == PolicySkip {
				skipped.Add(1)

				return nil
			}

			return fmt.Errorf("stat %q: %w", path, err)
		}

		total.Add(uint64(info.Size())) //nolint:gosec // Size of a regular file is never negative

		return nil
	})

	switch {
	case walkErr == nil:
	case ctx.Err() != nil && errors.Is(walkErr, ctx.Err()):
		return 0, 0, walkErr
	case policy == PolicySkip:
		// Errors fastwalk returns without passing them to the callback, e.g. a vanished root.
		skipped.Add(1)
	default:
		return 0, 0, fmt.Errorf("computing size of %q: %w", dir, walkErr)
	}

	return total.Load(), int(skipped.Load()), nil
}
