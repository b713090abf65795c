package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(capacities map[int]int) (*Registry, *OverflowCounter) {
	issues := NewOverflowCounter()
	return New(KindJob, capacities, issues), issues
}

func TestNew_NilIssues_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "registry.New: issues counter is nil", func() {
		New(KindJob, map[int]int{1: 1}, nil)
	})
}

func TestNew_NegativeCapacity_Panics(t *testing.T) {
	assert.Panics(t, func() {
		New(KindJob, map[int]int{1: -1}, NewOverflowCounter())
	})
}

func TestAdd_FullRegion_CountsOverflow(t *testing.T) {
	// GIVEN region A with capacity 3 already holding 3 jobs
	r, issues := newTestRegistry(map[int]int{1: 3})
	for id := 1; id <= 3; id++ {
		require.True(t, r.Add(1, id))
	}

	// WHEN a 4th job is added
	ok := r.Add(1, 4)

	// THEN count stays 3 and overflow(A) = 1
	assert.False(t, ok)
	assert.Equal(t, 3, r.Count(1))
	assert.Equal(t, 1, issues.Overflow(KindJob, 1))
	assert.Equal(t, 1, issues.Total(KindJob))
	assert.Equal(t, 0, issues.Total(KindDwelling))
	_, stored := r.RegionOf(4)
	assert.False(t, stored, "overflowed id must not be stored")
}

func TestAddRemove_Symmetry(t *testing.T) {
	r, _ := newTestRegistry(map[int]int{1: 5, 2: 5})
	r.Add(1, 10)
	r.Add(1, 11)
	r.Add(1, 12)

	before := r.Count(1)
	require.True(t, r.Remove(1, 10))
	assert.Equal(t, before-1, r.Count(1))
	assert.NotContains(t, r.IDs(1), 10)
	assert.ElementsMatch(t, []int{11, 12}, r.IDs(1))

	require.True(t, r.Add(2, 10))
	assert.Equal(t, 1, r.Count(2))
	region, ok := r.RegionOf(10)
	assert.True(t, ok)
	assert.Equal(t, 2, region)
}

func TestRemove_SwapsLastIntoHole(t *testing.T) {
	r, _ := newTestRegistry(map[int]int{1: 4})
	for _, id := range []int{1, 2, 3, 4} {
		r.Add(1, id)
	}

	r.Remove(1, 2)
	assert.Equal(t, []int{1, 4, 3}, r.IDs(1))
	assert.Equal(t, 0, r.slots[1].ids[3], "vacated tail slot is zeroed")

	r.Remove(1, 3)
	assert.Equal(t, []int{1, 4}, r.IDs(1))

	// The moved id is still removable through the index.
	require.True(t, r.Remove(1, 4))
	assert.Equal(t, []int{1}, r.IDs(1))
}

func TestRemove_AbsentID_LeavesStateUnchanged(t *testing.T) {
	// GIVEN a registry without id X
	r, issues := newTestRegistry(map[int]int{1: 3, 2: 3})
	r.Add(1, 5)
	r.Add(1, 6)
	r.Add(2, 7)
	snapshot := map[int][]int{}
	for region, s := range r.slots {
		snapshot[region] = append([]int(nil), s.ids...)
	}
	fills := map[int]int{1: r.Count(1), 2: r.Count(2)}

	// WHEN X is removed, and a stored id is removed from the wrong region
	assert.False(t, r.Remove(1, 99))
	assert.False(t, r.Remove(1, 7))

	// THEN storage is identical to before the calls
	for region, s := range r.slots {
		assert.True(t, reflect.DeepEqual(snapshot[region], s.ids), "region %d storage changed", region)
		assert.Equal(t, fills[region], s.fill)
	}
	assert.Equal(t, 0, issues.Total(KindJob))
}

func TestAdd_DuplicateOrUnknownRegion_Ignored(t *testing.T) {
	r, issues := newTestRegistry(map[int]int{1: 3, 2: 3})
	require.True(t, r.Add(1, 5))

	assert.False(t, r.Add(2, 5), "an id is vacant in at most one region")
	assert.False(t, r.Add(1, 5))
	assert.False(t, r.Add(9, 6))
	assert.Equal(t, 1, r.Total())
	assert.Equal(t, 0, issues.Total(KindJob))
}

func TestCapacityInvariant_UnderChurn(t *testing.T) {
	r, issues := newTestRegistry(map[int]int{1: 4, 2: 2})
	attempts := 0
	for id := 1; id <= 40; id++ {
		region := 1 + id%2
		r.Add(region, id)
		attempts++
		if id%3 == 0 {
			ids := r.IDs(region)
			if len(ids) > 0 {
				r.Remove(region, ids[0])
			}
		}
		for _, reg := range r.Regions() {
			assert.LessOrEqual(t, r.Count(reg), r.Capacity(reg))
		}
	}
	assert.Equal(t, r.Count(1)+r.Count(2), r.Total())
	assert.Positive(t, issues.Total(KindJob))
	assert.Equal(t, []int{1, 2}, issues.Regions(KindJob))
}

func TestAt_ReturnsStoredIDs(t *testing.T) {
	r, _ := newTestRegistry(map[int]int{1: 2})
	r.Add(1, 8)
	r.Add(1, 9)
	assert.Equal(t, 8, r.At(1, 0))
	assert.Equal(t, 9, r.At(1, 1))
	assert.Panics(t, func() { r.At(1, 2) })
}

func TestUnknownRegion_Accessors(t *testing.T) {
	r, _ := newTestRegistry(map[int]int{1: 2})
	assert.Equal(t, 0, r.Count(5))
	assert.Equal(t, 0, r.Capacity(5))
	assert.Nil(t, r.IDs(5))
	assert.Equal(t, KindJob, r.Kind())
}
