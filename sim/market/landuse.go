package market

import (
	"math"

	"github.com/sirupsen/logrus"
)

// UseDwellingCapacityForThisZone reports whether construction in zone consumes
// discrete dwelling-unit capacity rather than developable acreage: the global
// switch is on and the zone carries a capacity record.
func (m *DwellingMarket) UseDwellingCapacityForThisZone(zone int) bool {
	if !m.geo.UseCapacity() {
		return false
	}
	_, ok := m.geo.DevelopmentCapacity(zone)
	return ok
}

// GetAvailableLandForConstruction returns the zone's rounded remaining
// dwelling-unit capacity in capacity mode, and its developable acreage otherwise.
func (m *DwellingMarket) GetAvailableLandForConstruction(zone int) float64 {
	if m.UseDwellingCapacityForThisZone(zone) {
		units, _ := m.geo.DevelopmentCapacity(zone)
		return math.Round(units)
	}
	return m.geo.DevelopableLand(zone)
}

// ConvertLand consumes buildable land for one new dwelling in zone.
//
// In capacity mode one dwelling unit is consumed regardless of acres, floored
// at zero. Otherwise acres are taken from the developable categories in their
// configured order: a category smaller than the outstanding demand is zeroed
// and the rest carried to the next one. Demand no category can cover is logged
// and dropped; no category ever goes negative.
func (m *DwellingMarket) ConvertLand(zone int, acres float64) {
	if m.UseDwellingCapacityForThisZone(zone) {
		units, _ := m.geo.DevelopmentCapacity(zone)
		m.geo.SetDevelopmentCapacity(zone, math.Max(units-1, 0))
		return
	}
	if acres <= 0 || math.IsNaN(acres) {
		return
	}
	z, ok := m.geo.Zone(zone)
	if !ok {
		logrus.Warnf("convert land: unknown zone %d", zone)
		return
	}
	demand := acres
	for _, cat := range m.geo.DevelopableCategories() {
		available := z.LandUse[cat]
		if available < demand {
			demand -= available
			if _, present := z.LandUse[cat]; present {
				z.LandUse[cat] = 0
			}
			continue
		}
		z.LandUse[cat] = available - demand
		demand = 0
		break
	}
	if demand > 0 {
		logrus.Warnf("convert land: zone %d short of %.3f developable acres", zone, demand)
	}
}
