package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical inputs
// MUST produce identical matches and incomes.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemJobMarket is the RNG subsystem for job region and slot draws.
	SubsystemJobMarket = "job_market"

	// SubsystemIncome is the base name for per-agent income draws.
	SubsystemIncome = "income"
)

// SubsystemYear returns the subsystem name for a subsystem within one simulated year.
func SubsystemYear(name string, year int) string {
	return fmt.Sprintf("%s_%d", name, year)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Must be called from the matching goroutine.
// Parallel tasks use TaskSeed instead and own their *rand.Rand.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// TaskSeed derives the seed of one independent task (e.g. one agent's income
// draw in one year). It depends only on the key, the subsystem and the task id,
// never on the order tasks are executed in.
func (p *PartitionedRNG) TaskSeed(subsystem string, taskID int) int64 {
	return int64(p.key) ^ fnv1a64(fmt.Sprintf("%s/%d", subsystem, taskID))
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
