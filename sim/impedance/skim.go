// Package impedance derives the spatial impedance inputs of matching from
// travel-time skims: zone-to-region minimum travel times, gravity-style
// accessibility indices and the trip-length utility curve.
package impedance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Skim is a zone×zone travel-time lookup in minutes for one mode.
// Implementations return +Inf for pairs they know nothing about.
type Skim interface {
	TravelTime(orig, dest int) float64
}

// MatrixSkim is a dense Skim over a fixed zone set.
type MatrixSkim struct {
	zones []int
	index map[int]int
	m     *mat.Dense
}

// NewMatrixSkim creates a skim over zones with every travel time set to +Inf.
// Panics if zones is empty or contains duplicates.
func NewMatrixSkim(zones []int) *MatrixSkim {
	if len(zones) == 0 {
		panic("NewMatrixSkim: no zones")
	}
	s := &MatrixSkim{
		zones: append([]int(nil), zones...),
		index: make(map[int]int, len(zones)),
		m:     mat.NewDense(len(zones), len(zones), nil),
	}
	for i, z := range zones {
		if _, dup := s.index[z]; dup {
			panic(fmt.Sprintf("NewMatrixSkim: duplicate zone %d", z))
		}
		s.index[z] = i
	}
	for i := range zones {
		for j := range zones {
			s.m.Set(i, j, math.Inf(1))
		}
	}
	return s
}

// Set records the travel time from orig to dest.
func (s *MatrixSkim) Set(orig, dest int, minutes float64) error {
	i, ok := s.index[orig]
	if !ok {
		return fmt.Errorf("skim: unknown origin zone %d", orig)
	}
	j, ok := s.index[dest]
	if !ok {
		return fmt.Errorf("skim: unknown destination zone %d", dest)
	}
	if math.IsNaN(minutes) || minutes < 0 {
		return fmt.Errorf("skim: travel time %d->%d must be a non-negative number, got %f", orig, dest, minutes)
	}
	s.m.Set(i, j, minutes)
	return nil
}

// TravelTime implements Skim.
func (s *MatrixSkim) TravelTime(orig, dest int) float64 {
	i, ok := s.index[orig]
	if !ok {
		return math.Inf(1)
	}
	j, ok := s.index[dest]
	if !ok {
		return math.Inf(1)
	}
	return s.m.At(i, j)
}

// Zones returns the skim's zone ids in matrix order. The slice must not be modified.
func (s *MatrixSkim) Zones() []int { return s.zones }
