package dirstat

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charlievieth/fastwalk"
)

// aggregate computes the same totals as dispatch with a single walk of the whole tree:
// every regular file is added to each ancestor directory inside the discovery bound.
func aggregate(ctx context.Context, opt Options, log logger, prog *progress) ([]SizeResult, int, error) {
	totals := newTally()

	totals.addDir(opt.Path)
	prog.discovered.Add(1)

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, opt.Path, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			if opt.OnError == PolicySkip {
				log.printf("[debug]: error accessing path %s: %v\n", path, err)
				totals.addError()

				return nil
			}

			return fmt.Errorf("reading %q: %w", path, err)
		}

		path = filepath.Clean(path)

		if d.IsDir() {
			if path != opt.Path && opt.withinDepth(calculateDepth(path, opt.Path)) {
				totals.addDir(path)
				prog.discovered.Add(1)
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if opt.OnError == PolicySkip {
				totals.addError()

				return nil
			}

			return fmt.Errorf("stat %q: %w", path, err)
		}

		totals.addFile(uint64(info.Size()), ancestors(path, opt)) //nolint:gosec // Never negative

		return nil
	})
	if walkErr != nil {
		return nil, 0, fmt.Errorf("computing size of %q: %w", opt.Path, walkErr)
	}

	results := totals.results()
	prog.measured.Store(int64(len(results)))

	return results, totals.failures, nil
}

// ancestors lists the directories from the parent of file up to the root
// that lie within the discovery bound.
func ancestors(file string, opt Options) []string {
	dir := filepath.Dir(file)
	depth := calculateDepth(dir, opt.Path)

	var dirs []string

	for {
		if opt.withinDepth(depth) {
			dirs = append(dirs, dir)
		}

		if dir == opt.Path {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
		depth--
	}

	return dirs
}
