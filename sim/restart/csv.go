// Package restart writes and reads the land-use state a later run resumes
// from: remaining development capacity and remaining developable acreage per
// zone.
package restart

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/landsim/landsim/sim/geo"
)

// CapacityColumn is the value column of the capacity table.
const CapacityColumn = "DevCapacity"

// File names used by WriteDir.
const (
	CapacityFile = "dev_capacity.csv"
	LandUseFile  = "dev_land_use.csv"
)

// Snapshot is the restartable land state of all zones. Capacity is nil when
// discrete-capacity mode is off.
type Snapshot struct {
	Capacity map[int]float64
	LandUse  map[int]float64
}

// TakeSnapshot captures the current land state of g.
func TakeSnapshot(g *geo.Data) Snapshot {
	snap := Snapshot{LandUse: make(map[int]float64, len(g.ZoneIDs()))}
	if g.UseCapacity() {
		snap.Capacity = make(map[int]float64)
	}
	for _, zone := range g.ZoneIDs() {
		snap.LandUse[zone] = g.DevelopableLand(zone)
		if snap.Capacity == nil {
			continue
		}
		if units, ok := g.DevelopmentCapacity(zone); ok {
			snap.Capacity[zone] = units
		}
	}
	return snap
}

// Apply restores the snapshot into g. Zones unknown to g are skipped with a
// warning.
func (s Snapshot) Apply(g *geo.Data) {
	for zone, units := range s.Capacity {
		if _, ok := g.Zone(zone); !ok {
			logrus.Warnf("restart: capacity for unknown zone %d ignored", zone)
			continue
		}
		g.SetDevelopmentCapacity(zone, units)
	}
	for zone, acres := range s.LandUse {
		if !g.SetDevelopableLand(zone, acres) {
			logrus.Warnf("restart: land use for unknown zone %d ignored", zone)
		}
	}
}

// WriteCapacityCSV writes the Zone,DevCapacity table of every zone carrying a
// capacity record.
func WriteCapacityCSV(w io.Writer, g *geo.Data) error {
	capacity := make(map[int]float64)
	for _, zone := range g.ZoneIDs() {
		if units, ok := g.DevelopmentCapacity(zone); ok {
			capacity[zone] = units
		}
	}
	return writeTable(w, CapacityColumn, capacity, g.ZoneIDs())
}

// WriteLandUseCSV writes the Zone,<column> table of remaining developable acreage.
func WriteLandUseCSV(w io.Writer, g *geo.Data, column string) error {
	return writeTable(w, column, TakeSnapshot(g).LandUse, g.ZoneIDs())
}

// ReadCapacityCSV reads a Zone,DevCapacity table.
func ReadCapacityCSV(r io.Reader) (map[int]float64, error) {
	return readTable(r, CapacityColumn)
}

// ReadLandUseCSV reads a Zone,<column> table.
func ReadLandUseCSV(r io.Reader, column string) (map[int]float64, error) {
	return readTable(r, column)
}

// writeTable writes a Zone,<column> table in ascending zone order.
func writeTable(w io.Writer, column string, values map[int]float64, zones []int) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Zone", column}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, zone := range zones {
		v, ok := values[zone]
		if !ok {
			continue
		}
		row := []string{strconv.Itoa(zone), strconv.FormatFloat(v, 'f', -1, 64)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing zone %d: %w", zone, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// readTable reads a Zone,<column> table. The header must name column.
func readTable(r io.Reader, column string) (map[int]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) != 2 || !strings.EqualFold(header[0], "Zone") || header[1] != column {
		return nil, fmt.Errorf("unexpected header %v, want [Zone %s]", header, column)
	}
	values := make(map[int]float64)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		zone, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("parsing zone %q: %w", row[0], err)
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("zone %d: parsing %s: %w", zone, column, err)
		}
		values[zone] = v
	}
	return values, nil
}

// WriteDir writes the snapshot of g into dir: the capacity table only in
// discrete-capacity mode, the land-use table always.
func WriteDir(dir string, g *geo.Data, landUseColumn string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating restart dir: %w", err)
	}
	snap := TakeSnapshot(g)
	if snap.Capacity != nil {
		if err := writeFile(filepath.Join(dir, CapacityFile), CapacityColumn, snap.Capacity, g.ZoneIDs()); err != nil {
			return err
		}
	}
	return writeFile(filepath.Join(dir, LandUseFile), landUseColumn, snap.LandUse, g.ZoneIDs())
}

func writeFile(path, column string, values map[int]float64, zones []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeTable(f, column, values, zones); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadFiles reads restart tables. An empty path skips that table.
func ReadFiles(capacityPath, landUsePath, landUseColumn string) (Snapshot, error) {
	var snap Snapshot
	var err error
	if capacityPath != "" {
		if snap.Capacity, err = readFile(capacityPath, CapacityColumn); err != nil {
			return Snapshot{}, err
		}
	}
	if landUsePath != "" {
		if snap.LandUse, err = readFile(landUsePath, landUseColumn); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}

func readFile(path, column string) (map[int]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	values, err := readTable(f, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}
