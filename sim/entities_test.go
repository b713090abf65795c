package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDwellingType_KnownNames(t *testing.T) {
	for _, dt := range DwellingTypes() {
		t.Run(dt.String(), func(t *testing.T) {
			got, err := ParseDwellingType(dt.String())
			require.NoError(t, err)
			assert.Equal(t, dt, got)
		})
	}
}

func TestParseDwellingType_Unknown_ReturnsSentinel(t *testing.T) {
	_, err := ParseDwellingType("castle")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDwellingType))
	assert.Contains(t, err.Error(), `"castle"`)
}

func TestDwellingType_String_OutOfRange(t *testing.T) {
	assert.Equal(t, "DwellingType(9)", DwellingType(9).String())
}

func TestVacancyFlags(t *testing.T) {
	d := &Dwelling{ID: 1, HouseholdID: Unoccupied}
	j := &Job{ID: 1, WorkerID: 7}
	assert.True(t, d.IsVacant())
	assert.False(t, j.IsVacant())
}
