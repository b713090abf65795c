package simulation

import (
	"github.com/landsim/landsim/sim/geo"
	"github.com/landsim/landsim/sim/restart"
)

// RestartDir writes the restart tables into Dir at the end of every year,
// replacing those of the previous year.
type RestartDir struct {
	Dir           string
	LandUseColumn string
}

// Export implements Exporter.
func (r RestartDir) Export(_ int, g *geo.Data) error {
	return restart.WriteDir(r.Dir, g, r.LandUseColumn)
}
