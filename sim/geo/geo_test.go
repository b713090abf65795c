package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZones() []Zone {
	return []Zone{
		{ID: 3, Region: 2, Area: 50, LandUse: map[string]float64{"vacant": 4, "agri": 6}},
		{ID: 1, Region: 1, Area: 100, LandUse: map[string]float64{"vacant": 10, "forest": 3}},
		{ID: 2, Region: 1, Area: 80},
	}
}

func TestNewData_DerivesSortedRegions(t *testing.T) {
	d, err := NewData(testZones(), []string{"vacant", "agri"}, false)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, d.ZoneIDs())
	assert.Equal(t, []int{1, 2}, d.RegionIDs())
	r, ok := d.Region(1)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, r.Zones)

	region, ok := d.RegionOfZone(3)
	assert.True(t, ok)
	assert.Equal(t, 2, region)
	_, ok = d.RegionOfZone(99)
	assert.False(t, ok)
}

func TestNewData_RejectsDuplicateAndInvalidZones(t *testing.T) {
	_, err := NewData([]Zone{{ID: 1}, {ID: 1}}, nil, false)
	assert.Error(t, err)

	_, err = NewData([]Zone{{ID: 0}}, nil, false)
	assert.Error(t, err)

	_, err = NewData([]Zone{{ID: 1, LandUse: map[string]float64{"vacant": -1}}}, nil, false)
	assert.Error(t, err)
}

func TestNewData_CopiesLandUse(t *testing.T) {
	zones := testZones()
	d, err := NewData(zones, []string{"vacant"}, false)
	require.NoError(t, err)

	zones[1].LandUse["vacant"] = 0
	assert.Equal(t, 10.0, d.DevelopableLand(1), "geo data must not alias caller maps")
}

func TestDevelopableLand_SumsOnlyDevelopableCategories(t *testing.T) {
	d, err := NewData(testZones(), []string{"vacant", "agri"}, false)
	require.NoError(t, err)

	assert.Equal(t, 10.0, d.DevelopableLand(1))
	assert.Equal(t, 10.0, d.DevelopableLand(3))
	assert.Equal(t, 0.0, d.DevelopableLand(2))
	assert.Equal(t, 0.0, d.DevelopableLand(42))
}

func TestDevelopmentCapacity_OptionalLookup(t *testing.T) {
	d, err := NewData(testZones(), nil, true)
	require.NoError(t, err)

	_, ok := d.DevelopmentCapacity(1)
	assert.False(t, ok, "zone without a record reports absence")

	d.SetDevelopmentCapacity(1, 12.4)
	units, ok := d.DevelopmentCapacity(1)
	assert.True(t, ok)
	assert.Equal(t, 12.4, units)

	d.SetDevelopmentCapacity(2, -3)
	units, _ = d.DevelopmentCapacity(2)
	assert.Equal(t, 0.0, units)
}

func TestSetDevelopableLand_AssignsFirstCategory(t *testing.T) {
	d, err := NewData(testZones(), []string{"vacant", "agri"}, false)
	require.NoError(t, err)

	// WHEN a restart total is applied to zone 3
	assert.True(t, d.SetDevelopableLand(3, 7.5))

	// THEN the first category holds it all and the total matches
	z, _ := d.Zone(3)
	assert.Equal(t, 7.5, z.LandUse["vacant"])
	assert.Equal(t, 0.0, z.LandUse["agri"])
	assert.Equal(t, 7.5, d.DevelopableLand(3))

	// AND zones without land use get the category created
	assert.True(t, d.SetDevelopableLand(2, 1))
	assert.Equal(t, 1.0, d.DevelopableLand(2))

	assert.False(t, d.SetDevelopableLand(99, 1))
}
