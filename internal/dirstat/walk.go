package dirstat

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charlievieth/fastwalk"
)

// calculateDepth returns the depth of a path relative to the root.
// Both paths must be cleaned.
func calculateDepth(path, root string) int {
	relPath, err := filepath.Rel(root, path)
	if err != nil || relPath == "." {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// walkDirs calls emit for the root and for every directory within maxDepth levels below it.
// Unreadable entries are skipped. emit is called from multiple goroutines.
func walkDirs(ctx context.Context, root string, maxDepth int, log logger, emit func(string) error) error {
	if err := emit(root); err != nil {
		return err
	}

	if maxDepth == 0 {
		return nil
	}

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	return fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.printf("[debug]: error accessing path %s: %v\n", path, err)

			return nil // Silently skip errors
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !d.IsDir() {
			return nil
		}

		path = filepath.Clean(path)
		if path == root {
			return nil
		}

		depth := calculateDepth(path, root)
		if maxDepth != Unbounded && depth > maxDepth {
			return filepath.SkipDir
		}

		if err := emit(path); err != nil {
			return err
		}

		if depth == maxDepth {
			return filepath.SkipDir
		}

		return nil
	})
}
