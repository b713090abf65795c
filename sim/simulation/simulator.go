// Package simulation drives the yearly cycle: it refreshes the spatial
// impedance model, updates market statistics and prices, runs the parallel
// income update, builds scheduled dwellings, lets workers search for jobs
// and exports restart tables.
package simulation

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/geo"
	"github.com/landsim/landsim/sim/impedance"
	"github.com/landsim/landsim/sim/income"
	"github.com/landsim/landsim/sim/market"
)

// SkimSource supplies the travel-time skims of a simulated year.
type SkimSource interface {
	SkimsFor(year int) (auto, transit impedance.Skim, err error)
}

// Exporter receives the land state at the end of every simulated year.
type Exporter interface {
	Export(year int, g *geo.Data) error
}

// Construction schedules one new dwelling. A zero Dwelling.ID is assigned
// the next free id when built. A zero Dwelling.HouseholdID means no household,
// so the dwelling enters the market vacant.
type Construction struct {
	Year     int
	Dwelling sim.Dwelling
	Acres    float64
}

// Config holds the run-level settings.
type Config struct {
	Seed      int64
	StartYear int
	Years     int
	Workers   int // income update workers; <= 0 uses GOMAXPROCS
}

// Inputs are the scenario data a simulator is built from. Income may be nil,
// which disables the income update.
type Inputs struct {
	Geo          *geo.Data
	Impedance    impedance.Params
	TripLength   *impedance.TripLengthUtility
	Market       market.Config
	Skims        SkimSource
	Dwellings    []*sim.Dwelling
	Jobs         []*sim.Job
	Persons      []*sim.Person
	Income       *income.Drift
	Construction []Construction
}

// YearResult summarizes one simulated year.
type YearResult struct {
	Year            int
	PriceCapped     int
	Built           int
	NotBuilt        int
	Searched        int
	Hired           int
	VacantDwellings int
	VacantJobs      int
	DevelopableLand float64
}

// Simulator runs the yearly cycle over one scenario.
type Simulator struct {
	cfg          Config
	geo          *geo.Data
	imp          *impedance.Model
	state        *market.State
	persons      []*sim.Person
	rng          *sim.PartitionedRNG
	executor     *income.Executor
	drift        *income.Drift
	skims        SkimSource
	construction map[int][]Construction
	policy       JobSearchPolicy
	exporters    []Exporter
	results      []YearResult
}

// NewSimulator validates the inputs and builds the markets. The job search
// policy defaults to UnemployedSearch.
func NewSimulator(cfg Config, in Inputs) (*Simulator, error) {
	if cfg.Years < 1 {
		return nil, fmt.Errorf("years must be >= 1, got %d", cfg.Years)
	}
	if in.Geo == nil || in.TripLength == nil || in.Skims == nil {
		return nil, fmt.Errorf("geo, trip length table and skims are required")
	}
	seen := make(map[int]bool, len(in.Persons))
	for _, p := range in.Persons {
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate person id %d", p.ID)
		}
		seen[p.ID] = true
	}

	imp := impedance.NewModel(in.Geo, in.Impedance, in.TripLength)
	state, err := market.NewState(in.Geo, imp, in.Dwellings, in.Jobs, in.Market)
	if err != nil {
		return nil, fmt.Errorf("building markets: %w", err)
	}
	s := &Simulator{
		cfg:          cfg,
		geo:          in.Geo,
		imp:          imp,
		state:        state,
		persons:      in.Persons,
		rng:          sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)),
		executor:     income.NewExecutor(cfg.Workers),
		drift:        in.Income,
		skims:        in.Skims,
		construction: make(map[int][]Construction),
		policy:       UnemployedSearch{},
	}
	for _, c := range in.Construction {
		s.construction[c.Year] = append(s.construction[c.Year], c)
	}
	return s, nil
}

// SetJobSearchPolicy replaces the job search policy.
func (s *Simulator) SetJobSearchPolicy(p JobSearchPolicy) {
	if p == nil {
		panic("SetJobSearchPolicy: policy is nil")
	}
	s.policy = p
}

// AddExporter registers an end-of-year land state sink.
func (s *Simulator) AddExporter(e Exporter) { s.exporters = append(s.exporters, e) }

// Run simulates every configured year in order.
func (s *Simulator) Run() error {
	for year := s.cfg.StartYear; year < s.cfg.StartYear+s.cfg.Years; year++ {
		if _, err := s.Step(year); err != nil {
			return err
		}
	}
	return nil
}

// Step simulates one year. Vacancy registries are rebuilt at the start of
// every year after the first; within a year they are only mutated by the
// matching calls.
func (s *Simulator) Step(year int) (YearResult, error) {
	res := YearResult{Year: year}

	auto, transit, err := s.skims.SkimsFor(year)
	if err != nil {
		return res, fmt.Errorf("year %d: %w", year, err)
	}
	s.imp.Update(auto, transit)
	s.imp.CalculateAccessibilities(s.populationByZone())

	if len(s.results) > 0 {
		s.state.Dwellings.IdentifyVacantDwellings()
		s.state.Jobs.IdentifyVacantJobs()
	}

	pv := s.state.Dwellings.CalculateRegionWidePriceAndVacancyByDwellingType()
	res.PriceCapped = s.state.Dwellings.ApplyPriceRestrictions(pv)

	if s.drift != nil {
		adjuster, err := s.drift.Adjuster(s.persons)
		if err != nil {
			return res, fmt.Errorf("year %d: income update: %w", year, err)
		}
		subsystem := sim.SubsystemYear(sim.SubsystemIncome, year)
		seedOf := func(id int) int64 { return s.rng.TaskSeed(subsystem, id) }
		if err := income.AdjustIncomes(s.executor, adjuster, s.persons, seedOf); err != nil {
			return res, fmt.Errorf("year %d: income update: %w", year, err)
		}
	}

	for _, c := range s.construction[year] {
		if s.build(c) {
			res.Built++
		} else {
			res.NotBuilt++
		}
	}

	s.searchJobs(year, &res)

	for _, e := range s.exporters {
		if err := e.Export(year, s.geo); err != nil {
			return res, fmt.Errorf("year %d: export: %w", year, err)
		}
	}

	res.VacantDwellings = s.state.Dwellings.Vacancies().Total()
	res.VacantJobs = s.state.Jobs.Vacancies().Total()
	for _, zone := range s.geo.ZoneIDs() {
		res.DevelopableLand += s.state.Dwellings.GetAvailableLandForConstruction(zone)
	}
	s.results = append(s.results, res)
	logrus.Infof("year %d: built %d, hired %d of %d searchers, %d vacant dwellings, %d vacant jobs",
		year, res.Built, res.Hired, res.Searched, res.VacantDwellings, res.VacantJobs)
	return res, nil
}

// build adds a scheduled dwelling when its zone still has room for it.
func (s *Simulator) build(c Construction) bool {
	m := s.state.Dwellings
	available := m.GetAvailableLandForConstruction(c.Dwelling.Zone)
	need := c.Acres
	if m.UseDwellingCapacityForThisZone(c.Dwelling.Zone) {
		need = 1
	}
	if available < need {
		logrus.Debugf("construction in zone %d skipped: %.3f available, %.3f needed", c.Dwelling.Zone, available, need)
		return false
	}
	d := c.Dwelling
	if d.HouseholdID == 0 {
		d.HouseholdID = sim.Unoccupied
	}
	if err := m.AddNewDwelling(&d, c.Acres); err != nil {
		logrus.Warnf("construction in zone %d failed: %v", c.Dwelling.Zone, err)
		return false
	}
	return true
}

func (s *Simulator) searchJobs(year int, res *YearResult) {
	searchers := s.policy.Searchers(year, s.persons)
	if len(searchers) == 0 {
		return
	}
	rng := s.rng.ForSubsystem(sim.SubsystemYear(sim.SubsystemJobMarket, year))
	jobs := s.state.Jobs
	for _, p := range searchers {
		if jobs.Vacancies().Total() == 0 {
			logrus.Debugf("year %d: job vacancies exhausted, %d searchers left", year, len(searchers)-res.Searched)
			break
		}
		res.Searched++
		id := jobs.FindVacantJob(rng, p.HomeZone, nil)
		if id == sim.NoJob {
			continue
		}
		if err := jobs.AssignJob(id, p.ID); err != nil {
			logrus.Warnf("person %d: %v", p.ID, err)
			continue
		}
		p.JobID = id
		p.Occupation = sim.Employed
		res.Hired++
	}
}

func (s *Simulator) populationByZone() map[int]float64 {
	pop := make(map[int]float64)
	for _, p := range s.persons {
		if p.HomeZone > 0 {
			pop[p.HomeZone]++
		}
	}
	return pop
}

// State returns the market state.
func (s *Simulator) State() *market.State { return s.state }

// Impedance returns the spatial impedance model.
func (s *Simulator) Impedance() *impedance.Model { return s.imp }

// Persons returns the simulated persons.
func (s *Simulator) Persons() []*sim.Person { return s.persons }

// Geo returns the geography.
func (s *Simulator) Geo() *geo.Data { return s.geo }

// Results returns the summaries of the simulated years.
func (s *Simulator) Results() []YearResult { return s.results }
