// Package market owns the vacancy bookkeeping of dwellings and jobs and the
// algorithms that consume it: job selection, land consumption by new
// construction and the yearly price and vacancy statistics.
//
// All market state hangs off an explicit State owned by the simulation
// driver. Nothing here is safe for concurrent mutation.
package market

import (
	"fmt"
	"math"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/geo"
	"github.com/landsim/landsim/sim/impedance"
	"github.com/landsim/landsim/sim/registry"
)

// Config groups market parameters.
type Config struct {
	CapacityFactor    float64                      // registry capacity per region = ceil(resources × factor)
	MinCapacity       int                          // lower bound on any region's registry capacity
	PriceRestrictions map[sim.DwellingType]float64 // restricted price cap as share of the type's market price
}

// DefaultConfig returns the standard market parameters.
func DefaultConfig() Config {
	return Config{CapacityFactor: 1.1, MinCapacity: 10}
}

// capacityFor sizes a region's registry from the number of resources located in it.
func (c Config) capacityFor(resources int) int {
	n := int(math.Ceil(float64(resources) * c.CapacityFactor))
	if n < c.MinCapacity {
		n = c.MinCapacity
	}
	return n
}

// ParseRestrictionTable converts a dwelling-type-name keyed restriction table.
// An unknown dwelling type name makes the whole table invalid.
func ParseRestrictionTable(table map[string]float64) (map[sim.DwellingType]float64, error) {
	out := make(map[sim.DwellingType]float64, len(table))
	for name, share := range table {
		dt, err := sim.ParseDwellingType(name)
		if err != nil {
			return nil, fmt.Errorf("price restriction table: %w", err)
		}
		if share < 0 || math.IsNaN(share) {
			return nil, fmt.Errorf("price restriction table: share for %s must be >= 0, got %f", name, share)
		}
		out[dt] = share
	}
	return out, nil
}

// State is the market state of one simulation instance.
type State struct {
	Geo       *geo.Data
	Issues    *registry.OverflowCounter
	Dwellings *DwellingMarket
	Jobs      *JobMarket
}

// NewState builds both markets and runs the initial vacancy scans.
func NewState(g *geo.Data, imp *impedance.Model, dwellings []*sim.Dwelling, jobs []*sim.Job, cfg Config) (*State, error) {
	issues := registry.NewOverflowCounter()
	dm, err := NewDwellingMarket(g, dwellings, cfg, issues)
	if err != nil {
		return nil, err
	}
	jm, err := NewJobMarket(g, imp, jobs, cfg, issues)
	if err != nil {
		return nil, err
	}
	dm.IdentifyVacantDwellings()
	jm.IdentifyVacantJobs()
	return &State{Geo: g, Issues: issues, Dwellings: dm, Jobs: jm}, nil
}
