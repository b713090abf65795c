package market

import "sort"

// densityBreakpoints are the lower bounds, in jobs per acre, of the ten job
// density categories.
var densityBreakpoints = []float64{0, 0.143, 0.5, 1, 2.3, 4, 6, 10, 17, 30}

// JobSummary aggregates the job stock.
type JobSummary struct {
	Total          int
	Vacant         int
	ByType         map[string]int
	ByZoneAndType  map[int]map[string]int
	VacantByRegion map[int]int
}

// SummarizeJobs counts jobs by zone and type, and vacancies by region.
// Vacancy here is the occupant field, so overflowed vacancies are included.
func (m *JobMarket) SummarizeJobs() JobSummary {
	s := JobSummary{
		ByType:         make(map[string]int),
		ByZoneAndType:  make(map[int]map[string]int),
		VacantByRegion: make(map[int]int),
	}
	for _, id := range m.ids {
		j := m.jobs[id]
		s.Total++
		s.ByType[j.Type]++
		if s.ByZoneAndType[j.Zone] == nil {
			s.ByZoneAndType[j.Zone] = make(map[string]int)
		}
		s.ByZoneAndType[j.Zone][j.Type]++
		if j.IsVacant() {
			s.Vacant++
			region, _ := m.geo.RegionOfZone(j.Zone)
			s.VacantByRegion[region]++
		}
	}
	return s
}

// CalculateJobDensityByZone returns jobs per acre for every zone. Zones
// without area have density zero.
func (m *JobMarket) CalculateJobDensityByZone() map[int]float64 {
	jobs := make(map[int]int)
	for _, id := range m.ids {
		jobs[m.jobs[id].Zone]++
	}
	density := make(map[int]float64, len(m.geo.ZoneIDs()))
	for _, zone := range m.geo.ZoneIDs() {
		z, _ := m.geo.Zone(zone)
		if z.Area > 0 {
			density[zone] = float64(jobs[zone]) / z.Area
		} else {
			density[zone] = 0
		}
	}
	return density
}

// GetJobDensityCategoryOfZone buckets a zone's job density into categories 1..10.
func (m *JobMarket) GetJobDensityCategoryOfZone(density map[int]float64, zone int) int {
	return DensityCategory(density[zone])
}

// DensityCategory buckets a density in jobs per acre into categories 1..10.
func DensityCategory(density float64) int {
	i := sort.Search(len(densityBreakpoints), func(i int) bool { return densityBreakpoints[i] > density })
	if i == 0 {
		return 1
	}
	return i
}
