package simulation

import (
	"fmt"
	"sort"

	"github.com/landsim/landsim/sim"
)

// JobSearchPolicy decides which persons look for a job in a simulated year.
// Searchers are served in the returned order.
type JobSearchPolicy interface {
	Searchers(year int, persons []*sim.Person) []*sim.Person
}

// UnemployedSearch lets every unemployed person without a job search, in
// ascending person id order.
type UnemployedSearch struct{}

func (UnemployedSearch) Searchers(_ int, persons []*sim.Person) []*sim.Person {
	var out []*sim.Person
	for _, p := range persons {
		if p.Occupation == sim.Unemployed && p.JobID == sim.Unoccupied {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NoSearch disables the job search.
type NoSearch struct{}

func (NoSearch) Searchers(int, []*sim.Person) []*sim.Person { return nil }

var validJobSearchPolicies = map[string]bool{"": true, "unemployed": true, "none": true}

// IsValidJobSearchPolicy reports whether name is a recognized policy name.
func IsValidJobSearchPolicy(name string) bool { return validJobSearchPolicies[name] }

// NewJobSearchPolicy creates a job search policy by name. An empty name
// selects UnemployedSearch. Panics on unrecognized names.
func NewJobSearchPolicy(name string) JobSearchPolicy {
	if !IsValidJobSearchPolicy(name) {
		panic(fmt.Sprintf("unknown job search policy %q", name))
	}
	switch name {
	case "none":
		return NoSearch{}
	default:
		return UnemployedSearch{}
	}
}
