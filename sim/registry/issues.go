package registry

import "sort"

// Kind names the resource a registry tracks.
type Kind string

const (
	KindDwelling Kind = "dwelling"
	KindJob      Kind = "job"
)

// IssueCounter records registry diagnostics for end-of-run reporting.
type IssueCounter interface {
	CountOverflow(kind Kind, region int)
}

// OverflowCounter is the in-memory IssueCounter: one counter per kind and region.
type OverflowCounter struct {
	counts map[Kind]map[int]int
}

// NewOverflowCounter creates an empty OverflowCounter.
func NewOverflowCounter() *OverflowCounter {
	return &OverflowCounter{counts: make(map[Kind]map[int]int)}
}

// CountOverflow implements IssueCounter.
func (c *OverflowCounter) CountOverflow(kind Kind, region int) {
	byRegion, ok := c.counts[kind]
	if !ok {
		byRegion = make(map[int]int)
		c.counts[kind] = byRegion
	}
	byRegion[region]++
}

// Overflow returns the number of rejected additions for kind in region.
func (c *OverflowCounter) Overflow(kind Kind, region int) int {
	return c.counts[kind][region]
}

// Total returns the number of rejected additions for kind across all regions.
func (c *OverflowCounter) Total(kind Kind) int {
	total := 0
	for _, n := range c.counts[kind] {
		total += n
	}
	return total
}

// Regions returns the regions with at least one overflow for kind, ascending.
func (c *OverflowCounter) Regions(kind Kind) []int {
	regions := make([]int, 0, len(c.counts[kind]))
	for r := range c.counts[kind] {
		regions = append(regions, r)
	}
	sort.Ints(regions)
	return regions
}
