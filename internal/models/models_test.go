package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsComplete(t *testing.T) {
	assert.False(t, (&Plate{Completion: 0.99}).IsComplete())
	assert.True(t, (&Plate{Completion: 1}).IsComplete())
	// Over-observed plates are still complete.
	assert.True(t, (&Plate{Completion: 1.4}).IsComplete())
}

func TestIsMaNGA(t *testing.T) {
	assert.True(t, (&Plate{SurveyMode: "MaNGA dither"}).IsMaNGA())
	assert.True(t, (&Plate{SurveyMode: "APOGEE lead, MaNGA"}).IsMaNGA())
	assert.False(t, (&Plate{SurveyMode: "APOGEE lead"}).IsMaNGA())
	assert.False(t, (&Plate{}).IsMaNGA())
}

func TestHasIncompleteSets(t *testing.T) {
	plate := &Plate{Sets: []Set{{Status: "Good"}, {Status: SetStatusIncomplete}}}
	assert.True(t, plate.HasIncompleteSets())

	plate = &Plate{Sets: []Set{{Status: "Good"}}}
	assert.False(t, plate.HasIncompleteSets())
	assert.False(t, (&Plate{}).HasIncompleteSets())
}

func TestLastPluggedCart(t *testing.T) {
	plate := &Plate{Pluggings: []Plugging{
		{CartNumber: 4, FScanMJD: 56900},
		{CartNumber: 2, FScanMJD: 57100},
		{CartNumber: 6, FScanMJD: 57000},
	}}
	cart, ok := plate.LastPluggedCart()
	assert.True(t, ok)
	assert.Equal(t, 2, cart)

	_, ok = (&Plate{}).LastPluggedCart()
	assert.False(t, ok)
}
