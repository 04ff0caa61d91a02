package plugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albireox/Totoro/internal/models"
)

func mangaPlate(id int, completion float64) *models.Plate {
	return &models.Plate{
		PlateID:       id,
		Priority:      5,
		SurveyMode:    "MaNGA dither",
		Status:        "Accepted",
		Location:      "APO",
		Completion:    completion,
		CompletionAll: completion,
	}
}

func active(cart int, plate *models.Plate) models.ActivePlugging {
	return models.ActivePlugging{CartNumber: cart, Plate: plate}
}

func TestClassifyEmptyCart(t *testing.T) {
	status, err := ClassifyCart(nil, 3)
	require.NoError(t, err)
	assert.Equal(t, StatusEmpty, status.Code)
	assert.Equal(t, "empty", status.Label)
	assert.Nil(t, status.Plate)
	assert.Equal(t, 0.0, status.Completion)
}

func TestClassifyDuplicateActivePluggingIsFatal(t *testing.T) {
	pluggings := []models.ActivePlugging{
		active(2, mangaPlate(100, 0)),
		active(2, mangaPlate(101, 0)),
	}
	_, err := ClassifyCart(pluggings, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateActivePlugging)
}

func TestClassifyNonMaNGAOccupant(t *testing.T) {
	plate := mangaPlate(100, 0.5)
	plate.SurveyMode = "APOGEE lead"

	status, err := ClassifyCart([]models.ActivePlugging{active(1, plate)}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusNoMaNGAPlate, status.Code)
	assert.Equal(t, "noMaNGAplate", status.Label)
	// The occupant is still returned for replacement messaging.
	assert.Equal(t, plate, status.Plate)
	assert.Equal(t, 0.0, status.Completion)
}

func TestClassifyCompleteOccupant(t *testing.T) {
	// Over-observed plates classify as complete with completion pinned to 1.
	status, err := ClassifyCart([]models.ActivePlugging{active(1, mangaPlate(100, 1.3))}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusMaNGAComplete, status.Code)
	assert.Equal(t, "MaNGA_complete", status.Label)
	assert.Equal(t, 1.0, status.Completion)
}

func TestClassifyNotStartedOccupant(t *testing.T) {
	status, err := ClassifyCart([]models.ActivePlugging{active(1, mangaPlate(100, 0))}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusMaNGANotStarted, status.Code)
	assert.Equal(t, "MaNGA_noStarted", status.Label)
	assert.Equal(t, 0.0, status.Completion)
}

func TestClassifyStartedOccupant(t *testing.T) {
	status, err := ClassifyCart([]models.ActivePlugging{active(1, mangaPlate(100, 0.4))}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusMaNGAStarted, status.Code)
	assert.Equal(t, "MaNGA_started", status.Label)
	assert.Equal(t, 0.4, status.Completion)
}

func TestUnknownStatusIsDefined(t *testing.T) {
	// The classifier cannot currently produce StatusUnknown, but it must
	// stay a well-defined state: future status rules may reach it.
	assert.Equal(t, "unknown", StatusUnknown.Label())
	assert.Equal(t, "replacing plate with unknown status", StatusUnknown.ReplaceMessage())

	// Codes outside the known set degrade to unknown instead of panicking.
	assert.Equal(t, "unknown", StatusCode(7).Label())
	assert.Equal(t, "replacing plate with unknown status", StatusCode(7).ReplaceMessage())
}
