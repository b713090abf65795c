// Package registry implements the bounded per-region inventory of vacant
// resource ids shared by the dwelling and job markets.
package registry

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// slot is one region's fixed-capacity id array. ids[:fill] are vacant;
// ids[fill:] are always zero.
type slot struct {
	ids  []int
	fill int
}

// location is where a stored id lives.
type location struct {
	region int
	pos    int
}

// Registry tracks vacant ids of one Kind, per region, with a fixed capacity
// per region.
//
// Invariants:
//   - an id is stored in at most one region, at most once
//   - Count(r) <= Capacity(r) for every region r
//
// Additions beyond capacity are dropped and reported to the IssueCounter.
// A dropped id stays invisible to matching until it is added again after a
// successful Remove frees room. Add and Remove are O(1).
//
// Thread-safety: NOT thread-safe. Mutated only during the sequential matching phase.
type Registry struct {
	kind   Kind
	slots  map[int]*slot
	index  map[int]location
	issues IssueCounter
}

// New creates a Registry with the given per-region capacities.
// Panics if a capacity is negative or issues is nil.
func New(kind Kind, capacities map[int]int, issues IssueCounter) *Registry {
	if issues == nil {
		panic("registry.New: issues counter is nil")
	}
	r := &Registry{
		kind:   kind,
		slots:  make(map[int]*slot, len(capacities)),
		index:  make(map[int]location),
		issues: issues,
	}
	for region, capacity := range capacities {
		if capacity < 0 {
			panic(fmt.Sprintf("registry.New: region %d capacity must be >= 0, got %d", region, capacity))
		}
		r.slots[region] = &slot{ids: make([]int, capacity)}
	}
	return r
}

// Kind returns the resource kind this registry tracks.
func (r *Registry) Kind() Kind { return r.kind }

// Add stores id as vacant in region. It returns false without changing state when
// the region is unknown, the id is already stored, or the region is at capacity.
// Only the capacity case is counted as an overflow.
func (r *Registry) Add(region, id int) bool {
	s, ok := r.slots[region]
	if !ok {
		logrus.Warnf("%s registry: add of id %d to unknown region %d ignored", r.kind, id, region)
		return false
	}
	if loc, dup := r.index[id]; dup {
		logrus.Warnf("%s registry: id %d already vacant in region %d; add to region %d ignored",
			r.kind, id, loc.region, region)
		return false
	}
	if s.fill >= len(s.ids) {
		r.issues.CountOverflow(r.kind, region)
		logrus.Debugf("%s registry: region %d at capacity %d, id %d dropped", r.kind, region, len(s.ids), id)
		return false
	}
	s.ids[s.fill] = id
	r.index[id] = location{region: region, pos: s.fill}
	s.fill++
	return true
}

// Remove deletes id from region's vacancies by swapping the last stored id into
// its position. It returns false without changing state, and logs a warning,
// when id is not stored in region.
func (r *Registry) Remove(region, id int) bool {
	loc, ok := r.index[id]
	if !ok || loc.region != region {
		logrus.Warnf("%s registry: id %d is not vacant in region %d; remove ignored", r.kind, id, region)
		return false
	}
	s := r.slots[region]
	last := s.fill - 1
	moved := s.ids[last]
	s.ids[loc.pos] = moved
	r.index[moved] = location{region: region, pos: loc.pos}
	s.ids[last] = 0
	s.fill--
	delete(r.index, id)
	return true
}

// Count returns the number of vacant ids stored for region.
func (r *Registry) Count(region int) int {
	if s, ok := r.slots[region]; ok {
		return s.fill
	}
	return 0
}

// Capacity returns region's capacity; 0 for unknown regions.
func (r *Registry) Capacity(region int) int {
	if s, ok := r.slots[region]; ok {
		return len(s.ids)
	}
	return 0
}

// At returns the i-th vacant id of region, 0 <= i < Count(region).
func (r *Registry) At(region, i int) int {
	s := r.slots[region]
	if s == nil || i < 0 || i >= s.fill {
		panic(fmt.Sprintf("%s registry: index %d out of range for region %d", r.kind, i, region))
	}
	return s.ids[i]
}

// IDs returns a copy of region's vacant ids in storage order.
func (r *Registry) IDs(region int) []int {
	s, ok := r.slots[region]
	if !ok {
		return nil
	}
	return append([]int(nil), s.ids[:s.fill]...)
}

// RegionOf returns the region id is stored in, if any.
func (r *Registry) RegionOf(id int) (int, bool) {
	loc, ok := r.index[id]
	return loc.region, ok
}

// Regions returns all registered regions in ascending order.
func (r *Registry) Regions() []int {
	regions := make([]int, 0, len(r.slots))
	for region := range r.slots {
		regions = append(regions, region)
	}
	sort.Ints(regions)
	return regions
}

// Total returns the number of vacant ids stored across all regions.
func (r *Registry) Total() int {
	return len(r.index)
}
