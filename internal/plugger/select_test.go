package plugger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/albireox/Totoro/internal/models"
)

func plateIDs(plates []*models.Plate) []int {
	ids := make([]int, len(plates))
	for i, plate := range plates {
		ids[i] = plate.PlateID
	}
	return ids
}

func TestSelectCandidatesPriorityFloor(t *testing.T) {
	low := mangaPlate(100, 0)
	low.Priority = 2
	ok := mangaPlate(101, 0)
	ok.Priority = 5

	selected := SelectCandidates([]*models.Plate{low, ok}, 2, 10)
	assert.Equal(t, []int{101}, plateIDs(selected))
}

func TestSelectCandidatesKeepsPluggedAndForcedFirst(t *testing.T) {
	plugged := pluggedPlate(100, 1, 0.5)
	forced := mangaPlate(101, 0)
	forced.Priority = 10
	normal := mangaPlate(102, 0)

	// A plugged plate below the floor is still retained.
	pluggedLow := pluggedPlate(103, 2, 0.5)
	pluggedLow.Priority = 1

	selected := SelectCandidates([]*models.Plate{normal, plugged, forced, pluggedLow}, 2, 10)
	assert.Equal(t, []int{plugged.PlateID, forced.PlateID, pluggedLow.PlateID, normal.PlateID},
		plateIDs(selected))
}

func TestSelectCandidatesRejectsComplete(t *testing.T) {
	complete := mangaPlate(100, 1.0)
	selected := SelectCandidates([]*models.Plate{complete}, 2, 10)
	assert.Empty(t, selected)
}

func TestSelectCandidatesTagsReplugs(t *testing.T) {
	started := mangaPlate(100, 0.4)
	startedIncompleteSets := mangaPlate(101, 0)
	startedIncompleteSets.CompletionAll = 0.1 // only incomplete-set credit
	fresh := mangaPlate(102, 0)
	plugged := pluggedPlate(103, 1, 0.5)

	selected := SelectCandidates(
		[]*models.Plate{started, startedIncompleteSets, fresh, plugged}, 2, 10)

	byID := map[int]*models.Plate{}
	for _, plate := range selected {
		byID[plate.PlateID] = plate
	}
	assert.True(t, byID[100].Replug)
	assert.True(t, byID[101].Replug, "incomplete-set credit counts for replug tagging")
	assert.False(t, byID[102].Replug)
	// Plugged plates are retained in the first pass and never tagged.
	assert.False(t, byID[103].Replug)
}
