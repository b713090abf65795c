// Package geo holds the static geography of a scenario: zones, the regions
// they aggregate into, developable land by land-use category and the optional
// discrete development capacity of each zone.
//
// Apart from land-use acreage and development capacity, which construction
// consumes, Data is read-only during a simulated year.
package geo

import (
	"fmt"
	"sort"
)

// Zone is the finest-grained geographic unit.
type Zone struct {
	ID      int
	Region  int
	Area    float64            // acres
	LandUse map[string]float64 // acres by land-use category
}

// Region aggregates zones. Zones are kept in ascending id order.
type Region struct {
	ID    int
	Zones []int
}

// Data is the geo-data collaborator consulted by the markets and the
// impedance model.
type Data struct {
	zones       map[int]*Zone
	zoneIDs     []int
	regions     map[int]*Region
	regionIDs   []int
	developable []string
	capacity    map[int]float64
	useCapacity bool
}

// NewData builds the geography from zones. Regions are derived from the zones'
// region ids. developable lists the land-use categories construction may
// consume, in consumption order. useCapacity is the global switch enabling
// discrete development capacity for zones that carry a capacity record.
// Returns an error on duplicate zone ids or non-positive ids.
func NewData(zones []Zone, developable []string, useCapacity bool) (*Data, error) {
	d := &Data{
		zones:       make(map[int]*Zone, len(zones)),
		regions:     make(map[int]*Region),
		developable: append([]string(nil), developable...),
		capacity:    make(map[int]float64),
		useCapacity: useCapacity,
	}
	for i := range zones {
		z := zones[i]
		if z.ID <= 0 {
			return nil, fmt.Errorf("zone[%d]: id must be positive, got %d", i, z.ID)
		}
		if _, dup := d.zones[z.ID]; dup {
			return nil, fmt.Errorf("zone[%d]: duplicate zone id %d", i, z.ID)
		}
		lu := make(map[string]float64, len(z.LandUse))
		for k, v := range z.LandUse {
			if v < 0 {
				return nil, fmt.Errorf("zone %d: land use %q must be non-negative, got %f", z.ID, k, v)
			}
			lu[k] = v
		}
		z.LandUse = lu
		d.zones[z.ID] = &z
		d.zoneIDs = append(d.zoneIDs, z.ID)

		r, ok := d.regions[z.Region]
		if !ok {
			r = &Region{ID: z.Region}
			d.regions[z.Region] = r
			d.regionIDs = append(d.regionIDs, z.Region)
		}
		r.Zones = append(r.Zones, z.ID)
	}
	sort.Ints(d.zoneIDs)
	sort.Ints(d.regionIDs)
	for _, r := range d.regions {
		sort.Ints(r.Zones)
	}
	return d, nil
}

// ZoneIDs returns all zone ids in ascending order. The slice must not be modified.
func (d *Data) ZoneIDs() []int { return d.zoneIDs }

// RegionIDs returns all region ids in ascending order. The slice must not be modified.
func (d *Data) RegionIDs() []int { return d.regionIDs }

// Zone returns the zone with the given id.
func (d *Data) Zone(id int) (*Zone, bool) {
	z, ok := d.zones[id]
	return z, ok
}

// Region returns the region with the given id.
func (d *Data) Region(id int) (*Region, bool) {
	r, ok := d.regions[id]
	return r, ok
}

// RegionOfZone resolves the region a zone belongs to.
func (d *Data) RegionOfZone(zone int) (int, bool) {
	z, ok := d.zones[zone]
	if !ok {
		return 0, false
	}
	return z.Region, true
}

// DevelopableCategories returns the developable land-use categories in
// consumption order. The slice must not be modified.
func (d *Data) DevelopableCategories() []string { return d.developable }

// DevelopableLand returns the sum of a zone's developable land-use acreage.
func (d *Data) DevelopableLand(zone int) float64 {
	z, ok := d.zones[zone]
	if !ok {
		return 0
	}
	sum := 0.0
	for _, cat := range d.developable {
		sum += z.LandUse[cat]
	}
	return sum
}

// UseCapacity reports the global discrete-capacity switch.
func (d *Data) UseCapacity() bool { return d.useCapacity }

// SetDevelopmentCapacity records a zone's discrete development capacity in dwelling units.
func (d *Data) SetDevelopmentCapacity(zone int, units float64) {
	if units < 0 {
		units = 0
	}
	d.capacity[zone] = units
}

// DevelopmentCapacity returns a zone's discrete development capacity.
// ok is false when the zone has no capacity record.
func (d *Data) DevelopmentCapacity(zone int) (units float64, ok bool) {
	units, ok = d.capacity[zone]
	return units, ok
}

// SetDevelopableLand replaces a zone's developable acreage: all of it is
// assigned to the first developable category and the others are zeroed.
// Restart tables carry only the total, so the split is not preserved.
func (d *Data) SetDevelopableLand(zone int, acres float64) bool {
	z, ok := d.zones[zone]
	if !ok || len(d.developable) == 0 {
		return false
	}
	if acres < 0 {
		acres = 0
	}
	for _, cat := range d.developable {
		z.LandUse[cat] = 0
	}
	z.LandUse[d.developable[0]] = acres
	return true
}
