// Package testutil provides shared test infrastructure for the simulator:
// a small reference geography and float assertions.
package testutil

import (
	"math"
	"testing"

	"github.com/landsim/landsim/sim/geo"
)

// Reference geography: region 1 holds zones 100 and 101, region 2 holds
// zones 200 and 201. Zone 201 has no developable land.
const (
	RegionNear = 1
	RegionFar  = 2
)

// DevelopableCategories is the consumption order of the reference geography.
var DevelopableCategories = []string{"vacant", "agriculture", "forest"}

// TwoRegionZones returns the zones of the reference geography.
func TwoRegionZones() []geo.Zone {
	return []geo.Zone{
		{ID: 100, Region: RegionNear, Area: 100, LandUse: map[string]float64{"vacant": 5, "agriculture": 10, "forest": 20, "residential": 50}},
		{ID: 101, Region: RegionNear, Area: 50, LandUse: map[string]float64{"vacant": 2}},
		{ID: 200, Region: RegionFar, Area: 200, LandUse: map[string]float64{"agriculture": 40}},
		{ID: 201, Region: RegionFar, Area: 20, LandUse: map[string]float64{"residential": 20}},
	}
}

// TwoRegionGeo builds the reference geography.
func TwoRegionGeo(t testing.TB, useCapacity bool) *geo.Data {
	t.Helper()
	g, err := geo.NewData(TwoRegionZones(), DevelopableCategories, useCapacity)
	if err != nil {
		t.Fatalf("building reference geography: %v", err)
	}
	return g
}

// TwoRegionMinutes gives reference travel times: 5 minutes within a region,
// 40 minutes between regions, 2 minutes within a zone.
func TwoRegionMinutes(orig, dest int) float64 {
	switch {
	case orig == dest:
		return 2
	case orig/100 == dest/100:
		return 5
	default:
		return 40
	}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
