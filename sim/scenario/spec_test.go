package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/impedance"
	"github.com/landsim/landsim/sim/income"
	"github.com/landsim/landsim/sim/market"
)

const validScenario = `
seed: 42
start_year: 2011
years: 3
developable_land_use: [vacant, agriculture]
zones:
  - id: 100
    region: 1
    area: 50
    land_use: {vacant: 5, agriculture: 10}
  - id: 200
    region: 2
    area: 80
    land_use: {vacant: 1}
    capacity: 12
market:
  capacity_factor: 1.5
  price_restrictions: {SFD: 0.8}
trip_length:
  file: tlfd.csv
  max_minute: 60
skims:
  - {year: 2011, auto: auto11.csv, transit: transit11.csv}
  - {year: 2013, auto: auto13.csv, transit: transit13.csv}
income:
  std_dev: 1000
  bins: 5
  target:
    - {age_group: 3, gender: 1, occupation: 1, mean: 42000}
population:
  dwellings: dd.csv
  jobs: jj.csv
  persons: pp.csv
construction:
  - {year: 2012, zone: 100, type: MF234, acres: 0.5, price: 900, bedrooms: 2, quality: 3}
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ValidScenario_ParsesAndValidates(t *testing.T) {
	// GIVEN a complete scenario file
	path := writeScenario(t, validScenario)

	// WHEN loaded
	spec, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, spec.Validate())

	// THEN fields are decoded and defaults are filled
	assert.Equal(t, int64(42), spec.Seed)
	assert.Equal(t, 3, spec.Years)
	assert.Equal(t, DefaultLandUseColumn, spec.LandUseColumn)
	require.Len(t, spec.Zones, 2)
	require.NotNil(t, spec.Zones[1].Capacity)
	assert.Equal(t, 12.0, *spec.Zones[1].Capacity)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "tlfd.csv"), spec.Path(spec.TripLength.File))
}

func TestLoad_UnknownKey_Rejected(t *testing.T) {
	// GIVEN a scenario with a typo in a key
	path := writeScenario(t, validScenario+"yeers: 4\n")

	// WHEN loaded
	_, err := Load(path)

	// THEN strict parsing rejects it
	assert.Error(t, err)
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_InvalidFields_ReturnErrors(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name   string
		mutate func(s *Spec)
	}{
		{"zero years", func(s *Spec) { s.Years = 0 }},
		{"no zones", func(s *Spec) { s.Zones = nil }},
		{"no developable land", func(s *Spec) { s.DevelopableLandUse = nil }},
		{"negative capacity factor", func(s *Spec) { s.Market.CapacityFactor = -1 }},
		{"no trip length file", func(s *Spec) { s.TripLength.File = "" }},
		{"zero max minute", func(s *Spec) { s.TripLength.MaxMinute = 0 }},
		{"no skims", func(s *Spec) { s.Skims = nil }},
		{"skims start too late", func(s *Spec) { s.StartYear = 2000 }},
		{"missing transit skim", func(s *Spec) { s.Skims[0].Transit = "" }},
		{"missing persons", func(s *Spec) { s.Population.Persons = "" }},
		{"negative construction acres", func(s *Spec) { s.Construction[0].Acres = -1 }},
		{"negative zone capacity", func(s *Spec) { s.Zones[0].Capacity = &negative }},
		{"restart db with tables", func(s *Spec) { s.Restart = &RestartSpec{DB: "r.db", LandUse: "land.csv"} }},
		{"restart run without db", func(s *Spec) { s.Restart = &RestartSpec{Run: "abc"} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := Parse([]byte(validScenario))
			require.NoError(t, err)
			tc.mutate(spec)
			assert.Error(t, spec.Validate())
		})
	}
}

func TestValidate_UnknownDwellingType_IsFatal(t *testing.T) {
	// GIVEN a scenario naming a dwelling type outside the enumeration
	spec, err := Parse([]byte(validScenario))
	require.NoError(t, err)
	spec.Market.PriceRestrictions = map[string]float64{"CASTLE": 0.5}

	// THEN validation fails with the typed error
	err = spec.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sim.ErrUnknownDwellingType))

	spec.Market.PriceRestrictions = nil
	spec.Construction[0].Type = "CASTLE"
	assert.True(t, errors.Is(spec.Validate(), sim.ErrUnknownDwellingType))
}

func TestSpec_Conversions(t *testing.T) {
	spec, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	g, err := spec.Geo()
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200}, g.ZoneIDs())
	units, ok := g.DevelopmentCapacity(200)
	assert.True(t, ok)
	assert.Equal(t, 12.0, units)
	_, ok = g.DevelopmentCapacity(100)
	assert.False(t, ok)

	cfg, err := spec.MarketConfig()
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.CapacityFactor)
	assert.Equal(t, market.DefaultConfig().MinCapacity, cfg.MinCapacity)
	assert.Equal(t, 0.8, cfg.PriceRestrictions[sim.SFD])

	assert.Equal(t, impedance.DefaultParams(), spec.ImpedanceParams())

	target, params := spec.IncomeTables()
	assert.Equal(t, 42000.0, target[income.Cell{AgeGroup: 3, Gender: sim.Male, Occupation: sim.Employed}])
	assert.Equal(t, 5, params.Bins)
}

func TestImpedanceParams_PartialBlockKeepsDefaults(t *testing.T) {
	// GIVEN an accessibility block that only sets the auto keys
	body := validScenario + "accessibility:\n  auto_alpha: 1\n  auto_beta: -0.1\n"
	spec, err := Parse([]byte(body))
	require.NoError(t, err)

	// WHEN the parameters are resolved
	p := spec.ImpedanceParams()

	// THEN the auto keys are overridden and transit keeps its defaults
	want := impedance.DefaultParams()
	assert.Equal(t, 1.0, p.AutoAlpha)
	assert.Equal(t, -0.1, p.AutoBeta)
	assert.Equal(t, want.TransitAlpha, p.TransitAlpha)
	assert.Equal(t, want.TransitBeta, p.TransitBeta)
}

func TestImpedanceParams_ExplicitZeroIsKept(t *testing.T) {
	spec, err := Parse([]byte(validScenario + "accessibility:\n  transit_beta: 0\n"))
	require.NoError(t, err)

	p := spec.ImpedanceParams()
	assert.Equal(t, 0.0, p.TransitBeta)
	assert.Equal(t, impedance.DefaultParams().AutoBeta, p.AutoBeta)
}

func TestSkimsFor_UsesLatestEntryNotAfterYear(t *testing.T) {
	spec, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	sk, ok := spec.SkimsFor(2012)
	require.True(t, ok)
	assert.Equal(t, 2011, sk.Year)

	sk, ok = spec.SkimsFor(2014)
	require.True(t, ok)
	assert.Equal(t, 2013, sk.Year)

	_, ok = spec.SkimsFor(2010)
	assert.False(t, ok)
}
