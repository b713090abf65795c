package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/landsim/landsim/sim/impedance"
)

// SkimFiles loads the skims a scenario names, one pair per entry, reusing the
// last loaded pair while a year falls under the same entry.
type SkimFiles struct {
	spec    *Spec
	zones   []int
	loaded  int
	hasPair bool
	auto    *impedance.MatrixSkim
	transit *impedance.MatrixSkim
}

// NewSkimFiles returns a skim source over zones.
func NewSkimFiles(spec *Spec, zones []int) *SkimFiles {
	return &SkimFiles{spec: spec, zones: zones}
}

// SkimsFor returns the auto and transit skims in effect for year.
func (f *SkimFiles) SkimsFor(year int) (auto, transit impedance.Skim, err error) {
	entry, ok := f.spec.SkimsFor(year)
	if !ok {
		return nil, nil, fmt.Errorf("no skims for year %d", year)
	}
	if f.hasPair && f.loaded == entry.Year {
		return f.auto, f.transit, nil
	}
	a, err := LoadSkimCSV(f.spec.Path(entry.Auto), f.zones)
	if err != nil {
		return nil, nil, fmt.Errorf("auto skim: %w", err)
	}
	t, err := LoadSkimCSV(f.spec.Path(entry.Transit), f.zones)
	if err != nil {
		return nil, nil, fmt.Errorf("transit skim: %w", err)
	}
	logrus.Infof("year %d: using %d skims", year, entry.Year)
	f.auto, f.transit, f.loaded, f.hasPair = a, t, entry.Year, true
	return a, t, nil
}
