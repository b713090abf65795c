// Package scenario loads the YAML scenario file of a simulation run and the
// CSV tables it points to.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/geo"
	"github.com/landsim/landsim/sim/impedance"
	"github.com/landsim/landsim/sim/income"
	"github.com/landsim/landsim/sim/market"
)

// Spec is the top-level scenario configuration.
// Loaded from YAML via Load(path). Relative paths resolve against the
// directory of the scenario file.
type Spec struct {
	Version             string             `yaml:"version"`
	Seed                int64              `yaml:"seed"`
	StartYear           int                `yaml:"start_year"`
	Years               int                `yaml:"years"`
	UseDwellingCapacity bool               `yaml:"use_dwelling_capacity"`
	DevelopableLandUse  []string           `yaml:"developable_land_use"`
	LandUseColumn       string             `yaml:"land_use_column,omitempty"`
	Zones               []ZoneSpec         `yaml:"zones"`
	Accessibility       *AccessibilitySpec `yaml:"accessibility,omitempty"`
	Market              MarketSpec         `yaml:"market"`
	TripLength          TripLengthSpec     `yaml:"trip_length"`
	Skims               []SkimSpec         `yaml:"skims"`
	Income              IncomeSpec         `yaml:"income"`
	Population          PopulationSpec     `yaml:"population"`
	Construction        []ConstructionSpec `yaml:"construction,omitempty"`
	JobSearch           string             `yaml:"job_search,omitempty"` // "unemployed" (default) or "none"
	Restart             *RestartSpec       `yaml:"restart,omitempty"`

	dir string
}

// ZoneSpec defines one zone.
type ZoneSpec struct {
	ID       int                `yaml:"id"`
	Region   int                `yaml:"region"`
	Area     float64            `yaml:"area"`
	LandUse  map[string]float64 `yaml:"land_use,omitempty"`
	Capacity *float64           `yaml:"capacity,omitempty"` // dwelling units; nil = no capacity record
}

// AccessibilitySpec overrides the gravity parameters. Keys left out keep
// their default.
type AccessibilitySpec struct {
	AutoAlpha    *float64 `yaml:"auto_alpha,omitempty"`
	AutoBeta     *float64 `yaml:"auto_beta,omitempty"`
	TransitAlpha *float64 `yaml:"transit_alpha,omitempty"`
	TransitBeta  *float64 `yaml:"transit_beta,omitempty"`
}

// MarketSpec configures the vacancy registries and price restrictions.
type MarketSpec struct {
	CapacityFactor    float64            `yaml:"capacity_factor,omitempty"`
	MinCapacity       int                `yaml:"min_capacity,omitempty"`
	PriceRestrictions map[string]float64 `yaml:"price_restrictions,omitempty"`
}

// TripLengthSpec points to the trip-length-frequency table.
type TripLengthSpec struct {
	File      string `yaml:"file"`
	MaxMinute int    `yaml:"max_minute"`
}

// SkimSpec names the skims of one year. A year without its own entry uses the
// latest earlier one.
type SkimSpec struct {
	Year    int    `yaml:"year"`
	Auto    string `yaml:"auto"`
	Transit string `yaml:"transit"`
}

// IncomeSpec configures the yearly income drift. The current distribution is
// measured from the population every year; only the target is configured.
type IncomeSpec struct {
	StdDev float64    `yaml:"std_dev"`
	Bins   int        `yaml:"bins"`
	Target []CellSpec `yaml:"target"`
}

// CellSpec is one row of an income distribution table.
type CellSpec struct {
	AgeGroup   int     `yaml:"age_group"`
	Gender     int     `yaml:"gender"`
	Occupation int     `yaml:"occupation"`
	Mean       float64 `yaml:"mean"`
}

// PopulationSpec points to the synthetic population tables.
type PopulationSpec struct {
	Dwellings string `yaml:"dwellings"`
	Jobs      string `yaml:"jobs"`
	Persons   string `yaml:"persons"`
}

// ConstructionSpec schedules one new dwelling.
type ConstructionSpec struct {
	Year       int     `yaml:"year"`
	Zone       int     `yaml:"zone"`
	Type       string  `yaml:"type"`
	Acres      float64 `yaml:"acres"`
	Price      int     `yaml:"price"`
	Bedrooms   int     `yaml:"bedrooms"`
	Quality    int     `yaml:"quality"`
	Restricted bool    `yaml:"restricted,omitempty"`
}

// RestartSpec points to the land state of a previous run: either restart
// tables, or a SQLite restart store with an optional run id. Without a run id
// the newest run with saved years is resumed.
type RestartSpec struct {
	Capacity string `yaml:"capacity,omitempty"`
	LandUse  string `yaml:"land_use,omitempty"`
	DB       string `yaml:"db,omitempty"`
	Run      string `yaml:"run,omitempty"`
}

// DefaultLandUseColumn is the restart table column for remaining developable acreage.
const DefaultLandUseColumn = "DevLandUse"

// Load reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, err
	}
	spec.dir = filepath.Dir(path)
	return spec, nil
}

// Parse decodes a scenario from YAML bytes. Relative paths resolve against
// the working directory.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if spec.LandUseColumn == "" {
		spec.LandUseColumn = DefaultLandUseColumn
	}
	if spec.Version == "" {
		logrus.Debugf("scenario has no version, assuming 1")
		spec.Version = "1"
	}
	return &spec, nil
}

// Path resolves a scenario-relative path.
func (s *Spec) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.dir, p)
}

// Validate checks that all fields of the scenario are valid.
func (s *Spec) Validate() error {
	if s.Years < 1 {
		return fmt.Errorf("years must be >= 1, got %d", s.Years)
	}
	if len(s.Zones) == 0 {
		return fmt.Errorf("at least one zone required")
	}
	for i, z := range s.Zones {
		if z.Capacity != nil && (*z.Capacity < 0 || math.IsNaN(*z.Capacity)) {
			return fmt.Errorf("zone[%d]: capacity must be >= 0, got %f", i, *z.Capacity)
		}
	}
	if len(s.DevelopableLandUse) == 0 {
		return fmt.Errorf("developable_land_use must list at least one category")
	}
	if s.Market.CapacityFactor < 0 {
		return fmt.Errorf("market.capacity_factor must be >= 0, got %f", s.Market.CapacityFactor)
	}
	if s.Market.MinCapacity < 0 {
		return fmt.Errorf("market.min_capacity must be >= 0, got %d", s.Market.MinCapacity)
	}
	if _, err := market.ParseRestrictionTable(s.Market.PriceRestrictions); err != nil {
		return err
	}
	if s.TripLength.File == "" {
		return fmt.Errorf("trip_length.file required")
	}
	if s.TripLength.MaxMinute < 1 {
		return fmt.Errorf("trip_length.max_minute must be >= 1, got %d", s.TripLength.MaxMinute)
	}
	if len(s.Skims) == 0 {
		return fmt.Errorf("at least one skims entry required")
	}
	first := s.Skims[0].Year
	for i, sk := range s.Skims {
		if sk.Auto == "" || sk.Transit == "" {
			return fmt.Errorf("skims[%d]: auto and transit paths required", i)
		}
		if sk.Year < first {
			first = sk.Year
		}
	}
	if first > s.StartYear {
		return fmt.Errorf("no skims for start year %d (earliest %d)", s.StartYear, first)
	}
	if s.Income.StdDev < 0 || s.Income.Bins < 0 {
		return fmt.Errorf("income: std_dev and bins must be >= 0")
	}
	if s.Population.Dwellings == "" || s.Population.Jobs == "" || s.Population.Persons == "" {
		return fmt.Errorf("population: dwellings, jobs and persons tables required")
	}
	if r := s.Restart; r != nil {
		if r.DB != "" && (r.Capacity != "" || r.LandUse != "") {
			return fmt.Errorf("restart: db and restart tables are exclusive")
		}
		if r.Run != "" && r.DB == "" {
			return fmt.Errorf("restart: run requires db")
		}
	}
	for i, c := range s.Construction {
		if _, err := sim.ParseDwellingType(c.Type); err != nil {
			return fmt.Errorf("construction[%d]: %w", i, err)
		}
		if c.Acres < 0 {
			return fmt.Errorf("construction[%d]: acres must be >= 0, got %f", i, c.Acres)
		}
	}
	return nil
}

// Geo builds the geography, including capacity records.
func (s *Spec) Geo() (*geo.Data, error) {
	zones := make([]geo.Zone, len(s.Zones))
	for i, z := range s.Zones {
		zones[i] = geo.Zone{ID: z.ID, Region: z.Region, Area: z.Area, LandUse: z.LandUse}
	}
	g, err := geo.NewData(zones, s.DevelopableLandUse, s.UseDwellingCapacity)
	if err != nil {
		return nil, err
	}
	for _, z := range s.Zones {
		if z.Capacity != nil {
			g.SetDevelopmentCapacity(z.ID, *z.Capacity)
		}
	}
	return g, nil
}

// ImpedanceParams returns the accessibility parameters, defaulted when absent.
func (s *Spec) ImpedanceParams() impedance.Params {
	p := impedance.DefaultParams()
	a := s.Accessibility
	if a == nil {
		return p
	}
	override(&p.AutoAlpha, a.AutoAlpha)
	override(&p.AutoBeta, a.AutoBeta)
	override(&p.TransitAlpha, a.TransitAlpha)
	override(&p.TransitBeta, a.TransitBeta)
	return p
}

func override(dst, value *float64) {
	if value != nil {
		*dst = *value
	}
}

// MarketConfig returns the market configuration, defaulted where unset.
func (s *Spec) MarketConfig() (market.Config, error) {
	cfg := market.DefaultConfig()
	if s.Market.CapacityFactor > 0 {
		cfg.CapacityFactor = s.Market.CapacityFactor
	}
	if s.Market.MinCapacity > 0 {
		cfg.MinCapacity = s.Market.MinCapacity
	}
	restrictions, err := market.ParseRestrictionTable(s.Market.PriceRestrictions)
	if err != nil {
		return market.Config{}, err
	}
	cfg.PriceRestrictions = restrictions
	return cfg, nil
}

// IncomeTables returns the target income distribution and draw shape.
func (s *Spec) IncomeTables() (target income.Distribution, params income.Params) {
	target = make(income.Distribution, len(s.Income.Target))
	for _, r := range s.Income.Target {
		target[income.Cell{AgeGroup: r.AgeGroup, Gender: sim.Gender(r.Gender), Occupation: sim.Occupation(r.Occupation)}] = r.Mean
	}
	return target, income.Params{StdDev: s.Income.StdDev, Bins: s.Income.Bins}
}

// SkimsFor returns the skim entry in effect for year: the entry with the
// latest year not after it.
func (s *Spec) SkimsFor(year int) (SkimSpec, bool) {
	best, found := SkimSpec{}, false
	for _, sk := range s.Skims {
		if sk.Year <= year && (!found || sk.Year > best.Year) {
			best, found = sk, true
		}
	}
	return best, found
}
