// Package sim provides the shared entities and deterministic randomness for
// the land-use and relocation simulator.
//
// # Reading Guide
//
// Start with these files to understand the matching core:
//   - entities.go: Dwelling, Job and Person records and the vacancy sentinel
//   - registry/registry.go: the bounded per-region vacancy inventory
//   - market/job.go: FindVacantJob, the distance-decayed two-stage selection
//   - market/landuse.go: development-capacity consumption
//
// # Architecture
//
// The sim package defines entities; behavior lives in sub-packages:
//   - sim/geo/: zones, regions, land use and development capacity
//   - sim/registry/: vacancy registries and the overflow diagnostics sink
//   - sim/impedance/: travel-time skims, trip-length utility, accessibilities
//   - sim/market/: dwelling and job markets owned by an explicit MarketState
//   - sim/income/: data-parallel per-agent updates on a bounded worker pool
//   - sim/scenario/: YAML scenario file and CSV table loading
//   - sim/restart/: capacity and land-use restart tables
//   - sim/simulation/: the year loop
//
// # Phases
//
// Matching (registry mutation, job search, construction) runs on a single
// goroutine in a deterministic order. Per-agent numeric updates run on the
// income executor; each task writes only its own agent and draws from its own
// seed, so results do not depend on scheduling.
package sim
