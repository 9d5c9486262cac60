// Package dirstat finds the largest directories below a root.
//
// It discovers directories with fastwalk, optionally bounded in depth,
// measures each discovered directory over its full subtree on a bounded
// pool of workers and ranks the results by size. An aggregate strategy
// produces the same totals with a single walk of the tree.
package dirstat
