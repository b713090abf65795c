package market

import (
	"github.com/landsim/landsim/sim"
)

// PriceVacancy holds study-area-wide statistics per dwelling type.
// AvgPrice covers unrestricted dwellings only.
type PriceVacancy struct {
	AvgPrice    map[sim.DwellingType]float64
	VacancyRate map[sim.DwellingType]float64
	Count       map[sim.DwellingType]int
}

// ZoneStats summarizes the dwelling stock of one zone.
type ZoneStats struct {
	Dwellings   int
	Vacant      int
	VacancyRate float64
	AvgPrice    float64
}

// CalculateRegionWidePriceAndVacancyByDwellingType aggregates average market
// price and vacancy rate per dwelling type over the whole study area.
func (m *DwellingMarket) CalculateRegionWidePriceAndVacancyByDwellingType() PriceVacancy {
	count := make(map[sim.DwellingType]int)
	vacant := make(map[sim.DwellingType]int)
	priced := make(map[sim.DwellingType]int)
	priceSum := make(map[sim.DwellingType]float64)
	for _, id := range m.ids {
		d := m.dwellings[id]
		count[d.Type]++
		if d.IsVacant() {
			vacant[d.Type]++
		}
		if !d.Restricted {
			priced[d.Type]++
			priceSum[d.Type] += float64(d.Price)
		}
	}
	pv := PriceVacancy{
		AvgPrice:    make(map[sim.DwellingType]float64),
		VacancyRate: make(map[sim.DwellingType]float64),
		Count:       count,
	}
	for _, dt := range sim.DwellingTypes() {
		if priced[dt] > 0 {
			pv.AvgPrice[dt] = priceSum[dt] / float64(priced[dt])
		}
		if count[dt] > 0 {
			pv.VacancyRate[dt] = float64(vacant[dt]) / float64(count[dt])
		}
	}
	return pv
}

// GetDwellingCountByTypeAndRegion counts dwellings per type and region.
func (m *DwellingMarket) GetDwellingCountByTypeAndRegion() map[sim.DwellingType]map[int]int {
	counts := make(map[sim.DwellingType]map[int]int)
	for _, id := range m.ids {
		d := m.dwellings[id]
		region, _ := m.geo.RegionOfZone(d.Zone)
		byRegion, ok := counts[d.Type]
		if !ok {
			byRegion = make(map[int]int)
			counts[d.Type] = byRegion
		}
		byRegion[region]++
	}
	return counts
}

// GetVacancyRateByTypeAndRegion returns the share of vacant dwellings per type and region.
func (m *DwellingMarket) GetVacancyRateByTypeAndRegion() map[sim.DwellingType]map[int]float64 {
	vacant := make(map[sim.DwellingType]map[int]int)
	for _, id := range m.ids {
		d := m.dwellings[id]
		if !d.IsVacant() {
			continue
		}
		region, _ := m.geo.RegionOfZone(d.Zone)
		if vacant[d.Type] == nil {
			vacant[d.Type] = make(map[int]int)
		}
		vacant[d.Type][region]++
	}
	rates := make(map[sim.DwellingType]map[int]float64)
	for dt, byRegion := range m.GetDwellingCountByTypeAndRegion() {
		rates[dt] = make(map[int]float64, len(byRegion))
		for region, n := range byRegion {
			rates[dt][region] = float64(vacant[dt][region]) / float64(n)
		}
	}
	return rates
}

// CalculateZoneStatistics summarizes dwellings, vacancies and average
// unrestricted price per zone.
func (m *DwellingMarket) CalculateZoneStatistics() map[int]ZoneStats {
	stats := make(map[int]ZoneStats)
	priced := make(map[int]int)
	priceSum := make(map[int]float64)
	for _, id := range m.ids {
		d := m.dwellings[id]
		s := stats[d.Zone]
		s.Dwellings++
		if d.IsVacant() {
			s.Vacant++
		}
		stats[d.Zone] = s
		if !d.Restricted {
			priced[d.Zone]++
			priceSum[d.Zone] += float64(d.Price)
		}
	}
	for zone, s := range stats {
		s.VacancyRate = float64(s.Vacant) / float64(s.Dwellings)
		if priced[zone] > 0 {
			s.AvgPrice = priceSum[zone] / float64(priced[zone])
		}
		stats[zone] = s
	}
	return stats
}

// ApplyPriceRestrictions caps the price of restricted dwellings at the
// configured share of their type's average market price. Types without a
// restriction share or without market-priced dwellings are left alone.
// Returns the number of dwellings whose price was lowered.
func (m *DwellingMarket) ApplyPriceRestrictions(pv PriceVacancy) int {
	if len(m.cfg.PriceRestrictions) == 0 {
		return 0
	}
	adjusted := 0
	for _, id := range m.ids {
		d := m.dwellings[id]
		if !d.Restricted {
			continue
		}
		share, ok := m.cfg.PriceRestrictions[d.Type]
		if !ok {
			continue
		}
		avg, ok := pv.AvgPrice[d.Type]
		if !ok {
			continue
		}
		if ceiling := int(share * avg); d.Price > ceiling {
			d.Price = ceiling
			adjusted++
		}
	}
	return adjusted
}
