package scenario

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/landsim/landsim/sim"
	"github.com/landsim/landsim/sim/impedance"
)

// readRows reads a headed CSV file and calls fn for every data row.
// Rows must have at least minCols columns.
func readRows(path string, minCols int, fn func(row []string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("reading %s header: %w", path, err)
	}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if len(row) < minCols {
			return fmt.Errorf("%s line %d: expected %d columns, got %d", path, line, minCols, len(row))
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("%s line %d: %w", path, line, err)
		}
	}
	return nil
}

func parseInts(row []string, names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		v, err := strconv.Atoi(strings.TrimSpace(row[i]))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloat(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return v, nil
}

// LoadSkimCSV reads an origin,destination,minutes table into a skim over zones.
// Pairs absent from the file stay unreachable.
func LoadSkimCSV(path string, zones []int) (*impedance.MatrixSkim, error) {
	skim := impedance.NewMatrixSkim(zones)
	cells := 0
	err := readRows(path, 3, func(row []string) error {
		od, err := parseInts(row, "origin", "destination")
		if err != nil {
			return err
		}
		minutes, err := parseFloat(row[2], "minutes")
		if err != nil {
			return err
		}
		cells++
		return skim.Set(od[0], od[1], minutes)
	})
	if err != nil {
		return nil, err
	}
	logrus.Debugf("loaded skim %s: %d cells", path, cells)
	return skim, nil
}

// LoadTripLengthCSV reads a minutes,utility table.
func LoadTripLengthCSV(path string, maxMinute int) (*impedance.TripLengthUtility, error) {
	var rows []impedance.TripLengthRow
	err := readRows(path, 2, func(row []string) error {
		minutes, err := parseInts(row, "minutes")
		if err != nil {
			return err
		}
		utility, err := parseFloat(row[1], "utility")
		if err != nil {
			return err
		}
		rows = append(rows, impedance.TripLengthRow{Minutes: minutes[0], Utility: utility})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return impedance.NewTripLengthUtility(rows, maxMinute)
}

// LoadDwellingsCSV reads
// id,zone,household,type,bedrooms,quality,price,restricted,year_built.
// An unknown type fails with sim.ErrUnknownDwellingType.
func LoadDwellingsCSV(path string) ([]*sim.Dwelling, error) {
	var dwellings []*sim.Dwelling
	err := readRows(path, 9, func(row []string) error {
		ids, err := parseInts(row, "id", "zone", "household")
		if err != nil {
			return err
		}
		kind, err := sim.ParseDwellingType(strings.TrimSpace(row[3]))
		if err != nil {
			return err
		}
		attrs, err := parseInts(row[4:7], "bedrooms", "quality", "price")
		if err != nil {
			return err
		}
		restricted, err := strconv.ParseBool(strings.TrimSpace(row[7]))
		if err != nil {
			return fmt.Errorf("parsing restricted: %w", err)
		}
		built, err := parseInts(row[8:], "year_built")
		if err != nil {
			return err
		}
		dwellings = append(dwellings, &sim.Dwelling{
			ID:          ids[0],
			Zone:        ids[1],
			HouseholdID: ids[2],
			Type:        kind,
			Bedrooms:    attrs[0],
			Quality:     attrs[1],
			Price:       attrs[2],
			Restricted:  restricted,
			YearBuilt:   built[0],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dwellings, nil
}

// LoadJobsCSV reads id,zone,worker,type.
func LoadJobsCSV(path string) ([]*sim.Job, error) {
	var jobs []*sim.Job
	err := readRows(path, 4, func(row []string) error {
		v, err := parseInts(row, "id", "zone", "worker")
		if err != nil {
			return err
		}
		jobs = append(jobs, &sim.Job{ID: v[0], Zone: v[1], WorkerID: v[2], Type: strings.TrimSpace(row[3])})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// LoadPersonsCSV reads id,age,gender,occupation,income,job,home_zone.
func LoadPersonsCSV(path string) ([]*sim.Person, error) {
	var persons []*sim.Person
	err := readRows(path, 7, func(row []string) error {
		v, err := parseInts(row, "id", "age", "gender", "occupation", "income", "job", "home_zone")
		if err != nil {
			return err
		}
		if v[2] != int(sim.Male) && v[2] != int(sim.Female) {
			return fmt.Errorf("gender must be %d or %d, got %d", sim.Male, sim.Female, v[2])
		}
		if v[3] < int(sim.Toddler) || v[3] > int(sim.Retiree) {
			return fmt.Errorf("occupation out of range: %d", v[3])
		}
		persons = append(persons, &sim.Person{
			ID:         v[0],
			Age:        v[1],
			Gender:     sim.Gender(v[2]),
			Occupation: sim.Occupation(v[3]),
			Income:     v[4],
			JobID:      v[5],
			HomeZone:   v[6],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return persons, nil
}
