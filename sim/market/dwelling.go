package market

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/geo"
	"github.com/landsim/landsim/sim/registry"
)

// DwellingMarket owns the dwelling stock and its vacancy registry.
type DwellingMarket struct {
	geo           *geo.Data
	cfg           Config
	issues        registry.IssueCounter
	dwellings     map[int]*sim.Dwelling
	ids           []int // ascending
	vacancies     *registry.Registry
	totalByRegion map[int]int
}

// NewDwellingMarket indexes the dwelling stock. Every dwelling must have a
// unique positive id and be located in a known zone.
func NewDwellingMarket(g *geo.Data, dwellings []*sim.Dwelling, cfg Config, issues registry.IssueCounter) (*DwellingMarket, error) {
	m := &DwellingMarket{
		geo:           g,
		cfg:           cfg,
		issues:        issues,
		dwellings:     make(map[int]*sim.Dwelling, len(dwellings)),
		totalByRegion: make(map[int]int),
	}
	for _, d := range dwellings {
		if err := m.index(d); err != nil {
			return nil, err
		}
	}
	sort.Ints(m.ids)
	return m, nil
}

func (m *DwellingMarket) index(d *sim.Dwelling) error {
	if d.ID <= 0 {
		return fmt.Errorf("dwelling id must be positive, got %d", d.ID)
	}
	if _, dup := m.dwellings[d.ID]; dup {
		return fmt.Errorf("duplicate dwelling id %d", d.ID)
	}
	if _, ok := m.geo.RegionOfZone(d.Zone); !ok {
		return fmt.Errorf("dwelling %d: unknown zone %d", d.ID, d.Zone)
	}
	m.dwellings[d.ID] = d
	m.ids = append(m.ids, d.ID)
	return nil
}

// IdentifyVacantDwellings sizes the registry from the dwelling stock, then
// lists every dwelling without a household as vacant in its region. It also
// tallies total dwellings per region for vacancy rates.
func (m *DwellingMarket) IdentifyVacantDwellings() {
	m.totalByRegion = make(map[int]int)
	for _, id := range m.ids {
		region, _ := m.geo.RegionOfZone(m.dwellings[id].Zone)
		m.totalByRegion[region]++
	}
	capacities := make(map[int]int, len(m.geo.RegionIDs()))
	for _, region := range m.geo.RegionIDs() {
		capacities[region] = m.cfg.capacityFor(m.totalByRegion[region])
	}
	m.vacancies = registry.New(registry.KindDwelling, capacities, m.issues)

	for _, id := range m.ids {
		if d := m.dwellings[id]; d.IsVacant() {
			m.AddDwellingToVacancyList(d)
		}
	}
	logrus.Infof("identified %d vacant dwellings out of %d", m.vacancies.Total(), len(m.ids))
}

// RemoveDwellingFromVacancyList removes a dwelling from its region's vacancies.
func (m *DwellingMarket) RemoveDwellingFromVacancyList(id int) bool {
	d, ok := m.dwellings[id]
	if !ok {
		logrus.Warnf("remove of unknown dwelling %d from vacancy list ignored", id)
		return false
	}
	region, _ := m.geo.RegionOfZone(d.Zone)
	return m.vacancies.Remove(region, id)
}

// AddDwellingToVacancyList lists a dwelling as vacant in its region.
func (m *DwellingMarket) AddDwellingToVacancyList(d *sim.Dwelling) bool {
	region, ok := m.geo.RegionOfZone(d.Zone)
	if !ok {
		logrus.Warnf("dwelling %d: unknown zone %d, not listed as vacant", d.ID, d.Zone)
		return false
	}
	return m.vacancies.Add(region, d.ID)
}

// MoveIn assigns a household to a vacant dwelling and takes it off the vacancy list.
func (m *DwellingMarket) MoveIn(dwellingID, householdID int) error {
	d, ok := m.dwellings[dwellingID]
	if !ok {
		return fmt.Errorf("move in: unknown dwelling %d", dwellingID)
	}
	if !d.IsVacant() {
		return fmt.Errorf("move in: dwelling %d is occupied by household %d", dwellingID, d.HouseholdID)
	}
	// An overflowed vacancy was never listed.
	if region, listed := m.vacancies.RegionOf(dwellingID); listed {
		m.vacancies.Remove(region, dwellingID)
	}
	d.HouseholdID = householdID
	return nil
}

// MoveOut vacates a dwelling and lists it as vacant.
func (m *DwellingMarket) MoveOut(dwellingID int) error {
	d, ok := m.dwellings[dwellingID]
	if !ok {
		return fmt.Errorf("move out: unknown dwelling %d", dwellingID)
	}
	if d.IsVacant() {
		return fmt.Errorf("move out: dwelling %d is already vacant", dwellingID)
	}
	d.HouseholdID = sim.Unoccupied
	m.AddDwellingToVacancyList(d)
	return nil
}

// AddNewDwelling registers a newly built dwelling, lists it as vacant when it
// has no household, and consumes acres of buildable land in its zone.
// A zero id is replaced by the next free id.
func (m *DwellingMarket) AddNewDwelling(d *sim.Dwelling, acres float64) error {
	if d.ID == 0 {
		d.ID = m.NextDwellingID()
	}
	if err := m.index(d); err != nil {
		return fmt.Errorf("new dwelling: %w", err)
	}
	if n := len(m.ids); n > 1 && m.ids[n-2] > d.ID {
		sort.Ints(m.ids)
	}
	region, _ := m.geo.RegionOfZone(d.Zone)
	m.totalByRegion[region]++
	if d.IsVacant() {
		m.AddDwellingToVacancyList(d)
	}
	m.ConvertLand(d.Zone, acres)
	return nil
}

// NextDwellingID returns one more than the highest dwelling id in use.
func (m *DwellingMarket) NextDwellingID() int {
	if len(m.ids) == 0 {
		return 1
	}
	return m.ids[len(m.ids)-1] + 1
}

// Dwelling returns the dwelling with the given id.
func (m *DwellingMarket) Dwelling(id int) (*sim.Dwelling, bool) {
	d, ok := m.dwellings[id]
	return d, ok
}

// DwellingCount returns the size of the dwelling stock.
func (m *DwellingMarket) DwellingCount() int { return len(m.ids) }

// Vacancies exposes the dwelling registry for read-only inspection.
func (m *DwellingMarket) Vacancies() *registry.Registry { return m.vacancies }

// VacancyRateByRegion returns listed vacancies over total dwellings in region.
func (m *DwellingMarket) VacancyRateByRegion(region int) float64 {
	total := m.totalByRegion[region]
	if total == 0 {
		return 0
	}
	return float64(m.vacancies.Count(region)) / float64(total)
}
