package simulation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/geo"
	"github.com/landsim/landsim/sim/impedance"
	"github.com/landsim/landsim/sim/internal/testutil"
	"github.com/landsim/landsim/sim/market"
)

// staticSkims returns the same skim pair for every year.
type staticSkims struct {
	skim impedance.Skim
	err  error
}

func (s staticSkims) SkimsFor(int) (impedance.Skim, impedance.Skim, error) {
	return s.skim, s.skim, s.err
}

func referenceSkims(t *testing.T, g *geo.Data) staticSkims {
	t.Helper()
	skim := impedance.NewMatrixSkim(g.ZoneIDs())
	for _, o := range g.ZoneIDs() {
		for _, d := range g.ZoneIDs() {
			require.NoError(t, skim.Set(o, d, testutil.TwoRegionMinutes(o, d)))
		}
	}
	return staticSkims{skim: skim}
}

var errNoSkims = errors.New("no skims")

func flatTripLength(t *testing.T) *impedance.TripLengthUtility {
	t.Helper()
	rows := make([]impedance.TripLengthRow, 0, 61)
	for m := 0; m <= 60; m++ {
		rows = append(rows, impedance.TripLengthRow{Minutes: m, Utility: 1})
	}
	tl, err := impedance.NewTripLengthUtility(rows, 60)
	require.NoError(t, err)
	return tl
}

func jobsIn(first, n, zone int) []*sim.Job {
	jobs := make([]*sim.Job, n)
	for i := range jobs {
		jobs[i] = &sim.Job{ID: first + i, Zone: zone, WorkerID: sim.Unoccupied, Type: "office"}
	}
	return jobs
}

func unemployed(first, n, homeZone int) []*sim.Person {
	persons := make([]*sim.Person, n)
	for i := range persons {
		persons[i] = &sim.Person{ID: first + i, Age: 30, Gender: sim.Female, Occupation: sim.Unemployed,
			Income: 0, JobID: sim.Unoccupied, HomeZone: homeZone}
	}
	return persons
}

// testInputs builds inputs over the reference geography.
func testInputs(t *testing.T, useCapacity bool, jobs []*sim.Job, persons []*sim.Person) Inputs {
	t.Helper()
	g := testutil.TwoRegionGeo(t, useCapacity)
	return Inputs{
		Geo:        g,
		Impedance:  impedance.DefaultParams(),
		TripLength: flatTripLength(t),
		Market:     market.DefaultConfig(),
		Skims:      referenceSkims(t, g),
		Jobs:       jobs,
		Persons:    persons,
	}
}

func newTestSimulator(t *testing.T, cfg Config, in Inputs) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, in)
	require.NoError(t, err)
	return s
}

// recordingExporter remembers the years it was called for.
type recordingExporter struct {
	years []int
	err   error
}

func (r *recordingExporter) Export(year int, _ *geo.Data) error {
	r.years = append(r.years, year)
	return r.err
}
