package market

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/geo"
	"github.com/landsim/landsim/sim/impedance"
	"github.com/landsim/landsim/sim/registry"
)

// minFallbackMinutes bounds the inverse-distance fallback weight 1/minutes.
const minFallbackMinutes = 1.0

// JobMarket owns the jobs and their vacancy registry.
type JobMarket struct {
	geo           *geo.Data
	impedance     *impedance.Model
	cfg           Config
	issues        registry.IssueCounter
	jobs          map[int]*sim.Job
	ids           []int // ascending
	vacancies     *registry.Registry
	totalByRegion map[int]int
	exhausted     int
}

// NewJobMarket indexes the jobs. Every job must have a unique positive id and
// be located in a known zone.
func NewJobMarket(g *geo.Data, imp *impedance.Model, jobs []*sim.Job, cfg Config, issues registry.IssueCounter) (*JobMarket, error) {
	if imp == nil {
		return nil, fmt.Errorf("job market: impedance model is nil")
	}
	m := &JobMarket{
		geo:       g,
		impedance: imp,
		cfg:       cfg,
		issues:    issues,
		jobs:      make(map[int]*sim.Job, len(jobs)),
	}
	for _, j := range jobs {
		if j.ID <= 0 {
			return nil, fmt.Errorf("job id must be positive, got %d", j.ID)
		}
		if _, dup := m.jobs[j.ID]; dup {
			return nil, fmt.Errorf("duplicate job id %d", j.ID)
		}
		if _, ok := g.RegionOfZone(j.Zone); !ok {
			return nil, fmt.Errorf("job %d: unknown zone %d", j.ID, j.Zone)
		}
		m.jobs[j.ID] = j
		m.ids = append(m.ids, j.ID)
	}
	sort.Ints(m.ids)
	return m, nil
}

// IdentifyVacantJobs sizes the registry from the job stock, then lists every
// job without a worker as vacant in its region.
func (m *JobMarket) IdentifyVacantJobs() {
	m.totalByRegion = make(map[int]int)
	for _, id := range m.ids {
		region, _ := m.geo.RegionOfZone(m.jobs[id].Zone)
		m.totalByRegion[region]++
	}
	capacities := make(map[int]int, len(m.geo.RegionIDs()))
	for _, region := range m.geo.RegionIDs() {
		capacities[region] = m.cfg.capacityFor(m.totalByRegion[region])
	}
	m.vacancies = registry.New(registry.KindJob, capacities, m.issues)

	for _, id := range m.ids {
		if j := m.jobs[id]; j.IsVacant() {
			m.AddJobToVacancyList(j.Zone, j.ID)
		}
	}
	logrus.Infof("identified %d vacant jobs out of %d", m.vacancies.Total(), len(m.ids))
}

// AddJobToVacancyList lists job id, located in zone, as vacant. Overflow is
// counted by the registry and reported as false.
func (m *JobMarket) AddJobToVacancyList(zone, id int) bool {
	region, ok := m.geo.RegionOfZone(zone)
	if !ok {
		logrus.Warnf("job %d: unknown zone %d, not listed as vacant", id, zone)
		return false
	}
	return m.vacancies.Add(region, id)
}

// FindVacantJob selects a vacant job for an agent living in homeZone among the
// candidate regions (all regions when nil), takes it off the vacancy list and
// returns its id. Returns sim.NoJob when no region has positive selection mass.
//
// Region weights, for regions with at least one vacancy:
//   - homeZone > 0: tripLengthUtility(round(minutes to region)) × vacancies;
//     when that is zero everywhere, 1 / minutes to region
//   - homeZone <= 0 (no location yet): vacancies
//
// Within the drawn region every vacant job is equally likely.
func (m *JobMarket) FindVacantJob(rng *rand.Rand, homeZone int, regions []int) int {
	if regions == nil {
		regions = m.vacancies.Regions()
	}
	mass := make([]float64, len(regions))
	if homeZone > 0 {
		m.utilityMass(homeZone, regions, mass)
		if floats.Sum(mass) == 0 {
			m.inverseDistanceMass(homeZone, regions, mass)
		}
	}
	if floats.Sum(mass) == 0 {
		// In-migrants, and located agents with no reachable vacancy, weigh by supply.
		m.supplyMass(regions, mass)
	}
	total := floats.Sum(mass)
	if total == 0 {
		m.exhausted++
		logrus.Warnf("no vacant job in %d candidate regions for home zone %d", len(regions), homeZone)
		return sim.NoJob
	}

	region := regions[drawIndex(rng, mass, total)]
	slot := rng.Intn(m.vacancies.Count(region))
	id := m.vacancies.At(region, slot)
	m.vacancies.Remove(region, id)
	return id
}

func (m *JobMarket) utilityMass(homeZone int, regions []int, mass []float64) {
	tl := m.impedance.TripLengthUtility()
	for i, region := range regions {
		n := m.vacancies.Count(region)
		if n == 0 {
			continue
		}
		minutes := m.impedance.MinTravelTime(homeZone, region)
		rounded := math.Round(minutes)
		if math.IsInf(rounded, 0) || rounded > float64(tl.MaxMinute()) {
			continue
		}
		mass[i] = tl.At(int(rounded)) * float64(n)
	}
}

func (m *JobMarket) inverseDistanceMass(homeZone int, regions []int, mass []float64) {
	for i, region := range regions {
		if m.vacancies.Count(region) == 0 {
			continue
		}
		minutes := m.impedance.MinTravelTime(homeZone, region)
		if math.IsInf(minutes, 0) {
			continue
		}
		mass[i] = 1 / math.Max(minutes, minFallbackMinutes)
	}
}

func (m *JobMarket) supplyMass(regions []int, mass []float64) {
	for i, region := range regions {
		mass[i] = float64(m.vacancies.Count(region))
	}
}

// drawIndex samples an index with probability proportional to mass.
// total must be the positive sum of mass.
func drawIndex(rng *rand.Rand, mass []float64, total float64) int {
	u := rng.Float64() * total
	cumulative := 0.0
	last := -1
	for i, w := range mass {
		if w <= 0 {
			continue
		}
		cumulative += w
		last = i
		if u < cumulative {
			return i
		}
	}
	// Float rounding can leave u at the very top of the range.
	return last
}

// AssignJob gives a vacant job to a worker and takes it off the vacancy list
// if it is still listed.
func (m *JobMarket) AssignJob(jobID, workerID int) error {
	j, ok := m.jobs[jobID]
	if !ok {
		return fmt.Errorf("assign job: unknown job %d", jobID)
	}
	if !j.IsVacant() {
		return fmt.Errorf("assign job: job %d is held by worker %d", jobID, j.WorkerID)
	}
	if region, listed := m.vacancies.RegionOf(jobID); listed {
		m.vacancies.Remove(region, jobID)
	}
	j.WorkerID = workerID
	return nil
}

// QuitJob vacates a job and lists it as vacant.
func (m *JobMarket) QuitJob(jobID int) error {
	j, ok := m.jobs[jobID]
	if !ok {
		return fmt.Errorf("quit job: unknown job %d", jobID)
	}
	if j.IsVacant() {
		return fmt.Errorf("quit job: job %d is already vacant", jobID)
	}
	j.WorkerID = sim.Unoccupied
	m.AddJobToVacancyList(j.Zone, j.ID)
	return nil
}

// Job returns the job with the given id.
func (m *JobMarket) Job(id int) (*sim.Job, bool) {
	j, ok := m.jobs[id]
	return j, ok
}

// Vacancies exposes the job registry for read-only inspection.
func (m *JobMarket) Vacancies() *registry.Registry { return m.vacancies }

// Exhausted returns how many searches found no vacant job.
func (m *JobMarket) Exhausted() int { return m.exhausted }
