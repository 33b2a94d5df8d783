// Package order keeps the per-dimension priority keys of jobs. Keys are plain
// floats: a drop between two neighbours takes their midpoint so no other job
// has to be renumbered, and Renormalize periodically rewrites the whole
// dimension as 1..n to bound precision loss.
package order

import (
	"math"
	"slices"

	"github.com/Flyrell/shopweek/internal/job"
)

// InsertBetween returns a key that sorts between before and after. A nil
// before means "insert first", a nil after means "insert last". When both are
// nil the target holds no other items and the key goes after every existing
// key (never below 1).
func InsertBetween(before, after *float64, existing []float64) float64 {
	switch {
	case before == nil && after == nil:
		top := 0.0
		for _, k := range existing {
			top = math.Max(top, k)
		}
		return top + 1
	case before == nil:
		return *after - 0.5
	case after == nil:
		return *before + 0.5
	default:
		return (*before + *after) / 2
	}
}

// Renormalize stable-sorts jobs by their key in dim, most recently updated
// first on equal keys, and reassigns keys 1..n in that dimension only. The
// input slice is not modified.
func Renormalize(jobs []job.Job, dim job.Dimension) []job.Job {
	sorted := slices.Clone(jobs)
	slices.SortStableFunc(sorted, func(a, b job.Job) int {
		if c := compareKeys(a.Placement(dim).Order, b.Placement(dim).Order); c != 0 {
			return c
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	for i := range sorted {
		p := sorted[i].Placement(dim)
		p.Order = float64(i + 1)
		sorted[i] = sorted[i].WithPlacement(dim, p)
	}
	return sorted
}

// RenormalizeAll renormalizes fab, then cut.
func RenormalizeAll(jobs []job.Job) []job.Job {
	out := jobs
	for _, dim := range job.Dimensions() {
		out = Renormalize(out, dim)
	}
	return out
}

// DropIndex maps a vertical drop position inside a day column to an insert
// index among count existing items.
func DropIndex(dropY, height float64, count int) int {
	if height <= 0 {
		return count
	}
	fraction := math.Max(0, math.Min(1, dropY/height))
	idx := int(math.Floor(fraction * float64(count+1)))
	return min(idx, count)
}

// KeyForDrop computes the key for draggedID when it is dropped at insertIndex
// among onDay, the other jobs occupying the target day. all is every job in
// the board and is only consulted when the day is empty.
func KeyForDrop(all, onDay []job.Job, insertIndex int, dim job.Dimension, draggedID string) float64 {
	neighbours := make([]float64, 0, len(onDay))
	for _, j := range onDay {
		if j.ID != draggedID {
			neighbours = append(neighbours, j.Placement(dim).Order)
		}
	}
	slices.SortStableFunc(neighbours, compareKeys)

	if len(neighbours) == 0 {
		existing := make([]float64, 0, len(all))
		for _, j := range all {
			if j.ID != draggedID {
				existing = append(existing, j.Placement(dim).Order)
			}
		}
		return InsertBetween(nil, nil, existing)
	}

	switch {
	case insertIndex <= 0:
		return InsertBetween(nil, &neighbours[0], nil)
	case insertIndex >= len(neighbours):
		return InsertBetween(&neighbours[len(neighbours)-1], nil, nil)
	default:
		return InsertBetween(&neighbours[insertIndex-1], &neighbours[insertIndex], nil)
	}
}

func compareKeys(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
