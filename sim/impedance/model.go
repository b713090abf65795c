package impedance

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/landsim/landsim/sim/geo"
)

// accessibilityScale is the value the most accessible zone is scaled to.
const accessibilityScale = 100.0

// Params holds the gravity parameters of the accessibility indices:
// population(dest)^Alpha × exp(Beta × minutes), per mode.
type Params struct {
	AutoAlpha    float64
	AutoBeta     float64
	TransitAlpha float64
	TransitBeta  float64
}

// DefaultParams returns the standard accessibility parameters.
func DefaultParams() Params {
	return Params{AutoAlpha: 1.2, AutoBeta: -0.3, TransitAlpha: 1.2, TransitBeta: -0.15}
}

// Model is the spatial impedance state of one simulated year.
// Update replaces the skims; the derived matrices are then immutable until
// the next Update.
type Model struct {
	geo         *geo.Data
	params      Params
	tripLength  *TripLengthUtility
	zoneIndex   map[int]int
	regionIndex map[int]int

	auto    Skim
	transit Skim

	autoAccessibility    []float64 // by zone index
	transitAccessibility []float64 // by zone index
	regionAccessibility  []float64 // by region index
	toRegion             *mat.Dense
}

// NewModel creates an impedance model over the zones and regions of g.
// Panics if g has no zones or tripLength is nil.
func NewModel(g *geo.Data, params Params, tripLength *TripLengthUtility) *Model {
	if len(g.ZoneIDs()) == 0 {
		panic("impedance.NewModel: geography has no zones")
	}
	if tripLength == nil {
		panic("impedance.NewModel: trip length utility is nil")
	}
	m := &Model{
		geo:         g,
		params:      params,
		tripLength:  tripLength,
		zoneIndex:   make(map[int]int, len(g.ZoneIDs())),
		regionIndex: make(map[int]int, len(g.RegionIDs())),
	}
	for i, z := range g.ZoneIDs() {
		m.zoneIndex[z] = i
	}
	for i, r := range g.RegionIDs() {
		m.regionIndex[r] = i
	}
	return m
}

// Update installs the skims of a new simulated year and recomputes the
// zone-to-region minimum travel times. Accessibilities need population and are
// recomputed separately by CalculateAccessibilities. Panics if either skim is nil.
func (m *Model) Update(auto, transit Skim) {
	if auto == nil || transit == nil {
		panic("impedance.Model.Update: nil skim")
	}
	m.auto = auto
	m.transit = transit
	m.CalculateDistanceToRegions()
}

// CalculateDistanceToRegions computes, for every origin zone and region, the
// minimum auto travel time to any zone of the region.
func (m *Model) CalculateDistanceToRegions() {
	zones := m.geo.ZoneIDs()
	regions := m.geo.RegionIDs()
	m.toRegion = mat.NewDense(len(zones), len(regions), nil)
	for i, orig := range zones {
		for j, region := range regions {
			r, _ := m.geo.Region(region)
			minTime := math.Inf(1)
			for _, dest := range r.Zones {
				if t := m.auto.TravelTime(orig, dest); t < minTime {
					minTime = t
				}
			}
			m.toRegion.Set(i, j, minTime)
		}
	}
}

// gravity is one destination's accessibility term. Unreachable destinations
// contribute nothing, whatever the decay.
func gravity(pop, alpha, beta, minutes float64) float64 {
	if math.IsInf(minutes, 1) || math.IsNaN(minutes) {
		return 0
	}
	return math.Pow(pop, alpha) * math.Exp(beta*minutes)
}

// CalculateAccessibilities computes auto and transit accessibility per zone
// from destination population, scales each mode so the most accessible zone
// scores 100, and averages auto accessibility over each region's zones.
func (m *Model) CalculateAccessibilities(population map[int]float64) {
	zones := m.geo.ZoneIDs()
	m.autoAccessibility = make([]float64, len(zones))
	m.transitAccessibility = make([]float64, len(zones))
	p := m.params
	for i, orig := range zones {
		for _, dest := range zones {
			pop := population[dest]
			if pop <= 0 {
				continue
			}
			m.autoAccessibility[i] += gravity(pop, p.AutoAlpha, p.AutoBeta, m.auto.TravelTime(orig, dest))
			m.transitAccessibility[i] += gravity(pop, p.TransitAlpha, p.TransitBeta, m.transit.TravelTime(orig, dest))
		}
	}
	scaleToMax(m.autoAccessibility, accessibilityScale)
	scaleToMax(m.transitAccessibility, accessibilityScale)

	regions := m.geo.RegionIDs()
	m.regionAccessibility = make([]float64, len(regions))
	for j, region := range regions {
		r, _ := m.geo.Region(region)
		if len(r.Zones) == 0 {
			continue
		}
		sum := 0.0
		for _, z := range r.Zones {
			sum += m.autoAccessibility[m.zoneIndex[z]]
		}
		m.regionAccessibility[j] = sum / float64(len(r.Zones))
	}
	logrus.Debugf("accessibilities computed for %d zones, %d regions", len(zones), len(regions))
}

// scaleToMax rescales values so that the largest equals top. All-zero input is left unchanged.
func scaleToMax(values []float64, top float64) {
	if len(values) == 0 {
		return
	}
	highest := floats.Max(values)
	if highest <= 0 {
		return
	}
	floats.Scale(top/highest, values)
}

// MinTravelTime returns the minimum auto travel time from zone to any zone of region.
// Returns +Inf for unknown zones or regions, or before the first Update.
func (m *Model) MinTravelTime(zone, region int) float64 {
	i, ok := m.zoneIndex[zone]
	if !ok || m.toRegion == nil {
		return math.Inf(1)
	}
	j, ok := m.regionIndex[region]
	if !ok {
		return math.Inf(1)
	}
	return m.toRegion.At(i, j)
}

// TravelTime returns the auto travel time between two zones.
func (m *Model) TravelTime(orig, dest int) float64 {
	if m.auto == nil {
		return math.Inf(1)
	}
	return m.auto.TravelTime(orig, dest)
}

// TripLengthUtility returns the run's trip-length utility curve.
func (m *Model) TripLengthUtility() *TripLengthUtility { return m.tripLength }

// AutoAccessibility returns the scaled auto accessibility of zone.
func (m *Model) AutoAccessibility(zone int) float64 {
	return lookup(m.autoAccessibility, m.zoneIndex, zone)
}

// TransitAccessibility returns the scaled transit accessibility of zone.
func (m *Model) TransitAccessibility(zone int) float64 {
	return lookup(m.transitAccessibility, m.zoneIndex, zone)
}

// RegionAccessibility returns the mean auto accessibility of region's zones.
func (m *Model) RegionAccessibility(region int) float64 {
	return lookup(m.regionAccessibility, m.regionIndex, region)
}

func lookup(values []float64, index map[int]int, id int) float64 {
	i, ok := index[id]
	if !ok || i >= len(values) {
		return 0
	}
	return values[i]
}
