package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albireox/Totoro/internal/models"
)

func testPlate(id int, ra float64) *models.Plate {
	return &models.Plate{
		PlateID:    id,
		Priority:   5,
		SurveyMode: "MaNGA dither",
		Status:     "Accepted",
		Location:   "APO",
		RA:         ra,
	}
}

func TestMemoryStoreSnapshotsAreCopies(t *testing.T) {
	mem := NewMemoryStore()
	mem.AddPlate(testPlate(100, 120))

	plates, err := mem.FetchPlatesAtAPO(context.Background(), Filters{})
	require.NoError(t, err)
	require.Len(t, plates, 1)

	// Mutating the returned snapshot must not leak back into the store.
	plates[0].Replug = true

	again, err := mem.FetchPlatesAtAPO(context.Background(), Filters{})
	require.NoError(t, err)
	assert.False(t, again[0].Replug)
}

func TestMemoryStoreRAFilter(t *testing.T) {
	mem := NewMemoryStore()
	mem.AddPlate(testPlate(100, 120))
	mem.AddPlate(testPlate(101, 300))

	plates, err := mem.FetchPlatesAtAPO(context.Background(), Filters{
		RARanges: [][2]float64{{100, 150}},
	})
	require.NoError(t, err)
	require.Len(t, plates, 1)
	assert.Equal(t, 100, plates[0].PlateID)

	// A wrapped window is expressed as two ranges.
	plates, err = mem.FetchPlatesAtAPO(context.Background(), Filters{
		RARanges: [][2]float64{{290, 360}, {0, 30}},
	})
	require.NoError(t, err)
	require.Len(t, plates, 1)
	assert.Equal(t, 101, plates[0].PlateID)
}

func TestMemoryStoreNonMaNGAExcluded(t *testing.T) {
	mem := NewMemoryStore()
	apogee := testPlate(100, 120)
	apogee.SurveyMode = "APOGEE lead"
	mem.AddPlate(apogee)

	plates, err := mem.FetchPlatesAtAPO(context.Background(), Filters{})
	require.NoError(t, err)
	assert.Empty(t, plates)
}
