package simulation

import (
	"fmt"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/income"
	"github.com/landsim/landsim/sim/restart"
	"github.com/landsim/landsim/sim/scenario"
)

// FromScenario loads every table a validated scenario names and builds a
// simulator over it. The restart state named by the scenario, tables or a
// SQLite store, is applied to the geography before the markets are built.
func FromScenario(spec *scenario.Spec, workers int) (*Simulator, error) {
	if !IsValidJobSearchPolicy(spec.JobSearch) {
		return nil, fmt.Errorf("unknown job search policy %q", spec.JobSearch)
	}
	g, err := spec.Geo()
	if err != nil {
		return nil, fmt.Errorf("geography: %w", err)
	}
	if r := spec.Restart; r != nil {
		snap, err := loadRestart(spec, r)
		if err != nil {
			return nil, err
		}
		snap.Apply(g)
	}

	tripLength, err := scenario.LoadTripLengthCSV(spec.Path(spec.TripLength.File), spec.TripLength.MaxMinute)
	if err != nil {
		return nil, fmt.Errorf("trip length table: %w", err)
	}
	marketCfg, err := spec.MarketConfig()
	if err != nil {
		return nil, err
	}
	dwellings, err := scenario.LoadDwellingsCSV(spec.Path(spec.Population.Dwellings))
	if err != nil {
		return nil, fmt.Errorf("dwellings: %w", err)
	}
	jobs, err := scenario.LoadJobsCSV(spec.Path(spec.Population.Jobs))
	if err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}
	persons, err := scenario.LoadPersonsCSV(spec.Path(spec.Population.Persons))
	if err != nil {
		return nil, fmt.Errorf("persons: %w", err)
	}

	var drift *income.Drift
	if target, params := spec.IncomeTables(); len(target) > 0 {
		if drift, err = income.NewDrift(target, params); err != nil {
			return nil, err
		}
	}

	construction := make([]Construction, 0, len(spec.Construction))
	for i, c := range spec.Construction {
		kind, err := sim.ParseDwellingType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("construction[%d]: %w", i, err)
		}
		d := sim.Dwelling{
			Zone:        c.Zone,
			HouseholdID: sim.Unoccupied,
			Type:        kind,
			Bedrooms:    c.Bedrooms,
			Quality:     c.Quality,
			Price:       c.Price,
			Restricted:  c.Restricted,
			YearBuilt:   c.Year,
		}
		construction = append(construction, Construction{Year: c.Year, Dwelling: d, Acres: c.Acres})
	}

	s, err := NewSimulator(
		Config{Seed: spec.Seed, StartYear: spec.StartYear, Years: spec.Years, Workers: workers},
		Inputs{
			Geo:          g,
			Impedance:    spec.ImpedanceParams(),
			TripLength:   tripLength,
			Market:       marketCfg,
			Skims:        scenario.NewSkimFiles(spec, g.ZoneIDs()),
			Dwellings:    dwellings,
			Jobs:         jobs,
			Persons:      persons,
			Income:       drift,
			Construction: construction,
		},
	)
	if err != nil {
		return nil, err
	}
	s.SetJobSearchPolicy(NewJobSearchPolicy(spec.JobSearch))
	return s, nil
}

func loadRestart(spec *scenario.Spec, r *scenario.RestartSpec) (restart.Snapshot, error) {
	if r.DB == "" {
		snap, err := restart.ReadFiles(spec.Path(r.Capacity), spec.Path(r.LandUse), spec.LandUseColumn)
		if err != nil {
			return restart.Snapshot{}, fmt.Errorf("restart tables: %w", err)
		}
		return snap, nil
	}
	snap, _, err := restart.ResumeSQLite(spec.Path(r.DB), r.Run)
	if err != nil {
		return restart.Snapshot{}, fmt.Errorf("restart db: %w", err)
	}
	return snap, nil
}
