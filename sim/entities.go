package sim

import (
	"errors"
	"fmt"
)

// Unoccupied marks a dwelling without a household or a job without a worker.
const Unoccupied = -1

// NoJob is returned by job searches when no vacancy has positive selection mass.
const NoJob = -1

// ErrUnknownDwellingType is returned when a dwelling type string is not one of
// the recognized types. Scenarios carrying one are invalid and cannot be run.
var ErrUnknownDwellingType = errors.New("unknown dwelling type")

// DwellingType classifies dwellings by structure.
type DwellingType int

const (
	SFD     DwellingType = iota // single-family detached
	SFA                         // single-family attached
	MF234                       // multi-family, 2-4 units
	MF5plus                     // multi-family, 5 or more units
	MH                          // mobile home
)

var dwellingTypeNames = []string{"SFD", "SFA", "MF234", "MF5plus", "MH"}

// DwellingTypes lists all dwelling types in declaration order.
func DwellingTypes() []DwellingType {
	return []DwellingType{SFD, SFA, MF234, MF5plus, MH}
}

func (t DwellingType) String() string {
	if int(t) < 0 || int(t) >= len(dwellingTypeNames) {
		return fmt.Sprintf("DwellingType(%d)", int(t))
	}
	return dwellingTypeNames[t]
}

// ParseDwellingType maps a dwelling type name to its DwellingType.
func ParseDwellingType(name string) (DwellingType, error) {
	for i, n := range dwellingTypeNames {
		if n == name {
			return DwellingType(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q; valid: SFD, SFA, MF234, MF5plus, MH", ErrUnknownDwellingType, name)
}

// Dwelling is a housing unit located in one zone.
// HouseholdID is Unoccupied iff the dwelling is listed in a vacancy registry.
type Dwelling struct {
	ID          int
	Zone        int
	HouseholdID int
	Type        DwellingType
	Bedrooms    int
	Quality     int
	Price       int  // monthly price
	Restricted  bool // legally price-restricted unit
	YearBuilt   int
}

// IsVacant reports whether no household occupies the dwelling.
func (d *Dwelling) IsVacant() bool {
	return d.HouseholdID == Unoccupied
}

// Job is a workplace located in one zone.
// WorkerID is Unoccupied iff the job is listed in a vacancy registry.
type Job struct {
	ID       int
	Zone     int
	WorkerID int
	Type     string
}

// IsVacant reports whether no worker holds the job.
func (j *Job) IsVacant() bool {
	return j.WorkerID == Unoccupied
}

// Gender of a person, as used by the income distribution tables.
type Gender int

const (
	Male Gender = iota + 1
	Female
)

// Occupation of a person, as used by the income distribution tables.
type Occupation int

const (
	Toddler Occupation = iota
	Employed
	Unemployed
	Student
	Retiree
)

// Person is a member of a household. Income is annual.
type Person struct {
	ID         int
	Age        int
	Gender     Gender
	Occupation Occupation
	Income     int
	JobID      int // Unoccupied when the person holds no job
	HomeZone   int // zone of the household's dwelling; <= 0 for in-migrants without one
}
