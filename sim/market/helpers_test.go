package market

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/geo"
	"github.com/landsim/landsim/sim/impedance"
	"github.com/landsim/landsim/sim/internal/testutil"
)

// regionMinutes is 5 minutes within a region and 40 minutes between regions.
func regionMinutes(o, d int) float64 {
	if o/100 == d/100 {
		return 5
	}
	return 40
}

// newTestImpedance builds an impedance model over g with the given travel
// times and trip-length rows tabulated up to maxMinute.
func newTestImpedance(t *testing.T, g *geo.Data, minutes func(o, d int) float64, rows []impedance.TripLengthRow, maxMinute int) *impedance.Model {
	t.Helper()
	skim := impedance.NewMatrixSkim(g.ZoneIDs())
	for _, o := range g.ZoneIDs() {
		for _, d := range g.ZoneIDs() {
			require.NoError(t, skim.Set(o, d, minutes(o, d)))
		}
	}
	tl, err := impedance.NewTripLengthUtility(rows, maxMinute)
	require.NoError(t, err)
	m := impedance.NewModel(g, impedance.DefaultParams(), tl)
	m.Update(skim, skim)
	return m
}

// standardTripLength gives utility 0.8 at 5 minutes and 0.01 at 40 minutes.
func standardTripLength() []impedance.TripLengthRow {
	return []impedance.TripLengthRow{{Minutes: 5, Utility: 0.8}, {Minutes: 40, Utility: 0.01}}
}

// vacantJobs creates n vacant jobs in zone starting at id first.
func vacantJobs(first, n, zone int) []*sim.Job {
	jobs := make([]*sim.Job, n)
	for i := range jobs {
		jobs[i] = &sim.Job{ID: first + i, Zone: zone, WorkerID: sim.Unoccupied, Type: "retail"}
	}
	return jobs
}

// newTestState builds a State over the reference geography with nearJobs
// vacant jobs in zone 100 and farJobs vacant jobs in zone 200.
func newTestState(t *testing.T, imp *impedance.Model, g *geo.Data, nearJobs, farJobs int, cfg Config) *State {
	t.Helper()
	jobs := append(vacantJobs(1, nearJobs, 100), vacantJobs(1000, farJobs, 200)...)
	st, err := NewState(g, imp, nil, jobs, cfg)
	require.NoError(t, err)
	return st
}

// regionShare draws trials jobs, putting each back, and returns the share drawn from RegionNear.
func regionShare(t *testing.T, st *State, homeZone, trials int, seed int64) float64 {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	near := 0
	for i := 0; i < trials; i++ {
		id := st.Jobs.FindVacantJob(rng, homeZone, nil)
		require.NotEqual(t, sim.NoJob, id)
		j, _ := st.Jobs.Job(id)
		if region, _ := st.Geo.RegionOfZone(j.Zone); region == testutil.RegionNear {
			near++
		}
		require.True(t, st.Jobs.AddJobToVacancyList(j.Zone, id))
	}
	return float64(near) / float64(trials)
}
