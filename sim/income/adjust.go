package income

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/landsim/landsim/sim"
)

// maxAgeGroup is the last ten-year age group; older persons share it.
const maxAgeGroup = 9

// Cell identifies one cell of an income distribution table.
type Cell struct {
	AgeGroup   int
	Gender     sim.Gender
	Occupation sim.Occupation
}

// CellOf returns the distribution cell of a person.
func CellOf(p *sim.Person) Cell {
	group := p.Age / 10
	if group > maxAgeGroup {
		group = maxAgeGroup
	}
	if group < 0 {
		group = 0
	}
	return Cell{AgeGroup: group, Gender: p.Gender, Occupation: p.Occupation}
}

// Distribution is the mean annual income per cell.
type Distribution map[Cell]float64

// Params shapes the discretized normal income draw.
type Params struct {
	StdDev float64 // standard deviation of the draw around the shift
	Bins   int     // bins on each side of the center; bins span ±3 standard deviations
}

// DefaultParams returns the standard draw shape.
func DefaultParams() Params {
	return Params{StdDev: 2000, Bins: 10}
}

func (p Params) validate() error {
	if p.Bins < 0 {
		return fmt.Errorf("income adjuster: bins must be >= 0, got %d", p.Bins)
	}
	if p.StdDev < 0 || math.IsNaN(p.StdDev) {
		return fmt.Errorf("income adjuster: std dev must be >= 0, got %f", p.StdDev)
	}
	return nil
}

// MeanByCell returns the mean income of persons per cell. Toddlers are skipped.
func MeanByCell(persons []*sim.Person) Distribution {
	sums := make(map[Cell]float64)
	counts := make(map[Cell]int)
	for _, p := range persons {
		if p.Occupation == sim.Toddler {
			continue
		}
		cell := CellOf(p)
		sums[cell] += float64(p.Income)
		counts[cell]++
	}
	d := make(Distribution, len(sums))
	for cell, sum := range sums {
		d[cell] = sum / float64(counts[cell])
	}
	return d
}

// Drift carries the target distribution across years. Each year's Adjuster
// measures the current distribution from the living population, so incomes
// stop moving once a cell's mean has reached its target.
type Drift struct {
	target Distribution
	params Params
}

// NewDrift copies target; the caller's map is not retained.
func NewDrift(target Distribution, params Params) (*Drift, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	d := &Drift{target: make(Distribution, len(target)), params: params}
	for cell, mean := range target {
		d.target[cell] = mean
	}
	return d, nil
}

// Adjuster builds the adjuster for a year starting with persons. A cell the
// target does not list takes its target from the first year it is observed.
func (d *Drift) Adjuster(persons []*sim.Person) (*Adjuster, error) {
	current := MeanByCell(persons)
	for cell, mean := range current {
		if _, ok := d.target[cell]; !ok {
			d.target[cell] = mean
		}
	}
	return NewAdjuster(current, d.target, d.params)
}

// Target returns the target mean of cell and whether it is known.
func (d *Drift) Target(cell Cell) (float64, bool) {
	mean, ok := d.target[cell]
	return mean, ok
}

// Adjuster moves incomes toward a target distribution. It holds only
// read-only tables after construction and is safe for concurrent use.
type Adjuster struct {
	current Distribution
	target  Distribution
	offsets []float64
	cdf     []float64
}

// NewAdjuster precomputes the discretized normal N(0, StdDev) over 2×Bins+1
// bins. current is the income distribution at the start of the year, target
// the one incomes drift toward.
func NewAdjuster(current, target Distribution, params Params) (*Adjuster, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	a := &Adjuster{current: current, target: target}
	if params.StdDev == 0 || params.Bins == 0 {
		a.offsets = []float64{0}
		a.cdf = []float64{1}
		return a, nil
	}
	normal := distuv.Normal{Mu: 0, Sigma: params.StdDev}
	width := 3 * params.StdDev / float64(params.Bins)
	total := 0.0
	weights := make([]float64, 0, 2*params.Bins+1)
	for k := -params.Bins; k <= params.Bins; k++ {
		offset := float64(k) * width
		w := normal.Prob(offset)
		a.offsets = append(a.offsets, offset)
		weights = append(weights, w)
		total += w
	}
	cumulative := 0.0
	a.cdf = make([]float64, len(weights))
	for i, w := range weights {
		cumulative += w / total
		a.cdf[i] = cumulative
	}
	a.cdf[len(a.cdf)-1] = 1
	return a, nil
}

// Shift returns the desired income change of a person: target minus current
// mean income of the person's cell. Cells missing from a table count as zero.
func (a *Adjuster) Shift(p *sim.Person) float64 {
	cell := CellOf(p)
	return a.target[cell] - a.current[cell]
}

// Adjust draws the person's new income around income + Shift and clamps it at zero.
func (a *Adjuster) Adjust(p *sim.Person, rng *rand.Rand) {
	u := rng.Float64()
	bin := len(a.cdf) - 1
	for i, c := range a.cdf {
		if u < c {
			bin = i
			break
		}
	}
	next := math.Round(float64(p.Income) + a.Shift(p) + a.offsets[bin])
	if next < 0 || math.IsNaN(next) {
		next = 0
	}
	p.Income = int(next)
}

// AdjustIncomes adjusts every person except toddlers on e. Person i draws from
// its own generator seeded by seedOf(person id), so results do not depend on
// scheduling.
func AdjustIncomes(e *Executor, a *Adjuster, persons []*sim.Person, seedOf func(personID int) int64) error {
	earners := make([]*sim.Person, 0, len(persons))
	for _, p := range persons {
		if p.Occupation != sim.Toddler {
			earners = append(earners, p)
		}
	}
	return ForEach(e, earners, func(p *sim.Person) error {
		a.Adjust(p, rand.New(rand.NewSource(seedOf(p.ID))))
		return nil
	})
}
