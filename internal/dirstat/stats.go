package dirstat

import (
	"sort"
	"sync"
	"time"
)

// SizeResult is the measured size of a single discovered directory.
type SizeResult struct {
	// Path is the directory path, derived from the root argument.
	Path string `json:"path"`
	// Size is the apparent size in bytes of all regular files in the subtree.
	Size uint64 `json:"size"`
}

// Report holds the ranked outcome of a scan.
type Report struct {
	// Root is the cleaned root path.
	Root string `json:"root"`
	// Entries are the largest directories, largest first.
	Entries []SizeResult `json:"entries"`
	// Directories is the number of directories measured.
	Directories int `json:"directories"`
	// Failures is the number of unreadable entries skipped under PolicySkip.
	Failures int `json:"failures"`
	// Strategy is the computation strategy that produced the sizes.
	Strategy Strategy `json:"strategy"`
	// Filesystem describes the volume holding the root, when available.
	Filesystem *Usage `json:"filesystem,omitempty"`
	// Elapsed is the total time taken for analysis.
	Elapsed time.Duration `json:"elapsed"`
	// TopN is the number of top results requested.
	TopN int `json:"top_n"`
}

// Rank orders results by size descending, breaking ties by path, and returns the first k.
// k <= 0 returns all results. The input slice is reordered in place.
func Rank(results []SizeResult, k int) []SizeResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Size != results[j].Size {
			return results[i].Size > results[j].Size
		}

		return results[i].Path < results[j].Path
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}

	return results
}

// filterMin drops results smaller than minSize.
func filterMin(results []SizeResult, minSize uint64) []SizeResult {
	if minSize == 0 {
		return results
	}

	kept := results[:0]

	for _, r := range results {
		if r.Size >= minSize {
			kept = append(kept, r)
		}
	}

	return kept
}

// tally aggregates directory totals from concurrent fastwalk callbacks using a mutex.
type tally struct {
	mu       sync.Mutex // Protect concurrent access
	sizes    map[string]uint64
	failures int
}

func newTally() *tally {
	return &tally{sizes: make(map[string]uint64)}
}

// addDir registers a discovered directory so it is reported even when empty.
func (t *tally) addDir(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sizes[path]; !ok {
		t.sizes[path] = 0
	}
}

// addFile adds size to every listed ancestor directory.
func (t *tally) addFile(size uint64, dirs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, dir := range dirs {
		t.sizes[dir] += size
	}
}

// addError increments the failure counter.
func (t *tally) addError() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures++
}

// results produces the unordered directory totals.
func (t *tally) results() []SizeResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]SizeResult, 0, len(t.sizes))
	for path, size := range t.sizes {
		out = append(out, SizeResult{Path: path, Size: size})
	}

	return out
}
