// Package timeline is the scheduling collaborator of the plugger: it decides
// which candidate plates fit in the observing window and how many new
// exposures each of them would take. The plugger only depends on the
// Timeline interface; the implementation here is a deliberately simple
// priority-ranked scheduler.
package timeline

import (
	"log"
	"math"
	"sort"

	"github.com/albireox/Totoro/internal/models"
)

// Hours per mock exposure, including overheads, and the number of exposures
// a plate needs to go from zero to complete.
const (
	hoursPerExposure  = 0.25
	exposuresPerPlate = 12
)

// Timeline schedules candidate plates into an observing window.
type Timeline interface {
	// Schedule fills the remaining window with plates, in ranking order.
	Schedule(plates []*models.Plate, mode string)

	// ForceSchedule adds plates to the scheduled list unconditionally,
	// skipping plates already scheduled.
	ForceSchedule(plates []*models.Plate)

	// Scheduled returns the plates scheduled so far, in scheduling order.
	Scheduled() []*models.Plate

	// Remaining returns the unallocated time left in the window, in hours.
	Remaining() float64

	// NewExposures returns the number of mock exposures scheduled for a
	// plate, or 0 if the plate is not scheduled.
	NewExposures(plateID int) int
}

type timeline struct {
	startDate float64
	endDate   float64

	remaining float64
	scheduled []*models.Plate
	exposures map[int]int
}

// New creates a timeline for the window [jd0, jd1].
func New(jd0, jd1 float64) Timeline {
	return &timeline{
		startDate: jd0,
		endDate:   jd1,
		remaining: (jd1 - jd0) * 24.0,
		exposures: map[int]int{},
	}
}

func (t *timeline) ForceSchedule(plates []*models.Plate) {
	for _, plate := range plates {
		if t.isScheduled(plate.PlateID) {
			continue
		}
		t.add(plate)
	}
}

func (t *timeline) Schedule(plates []*models.Plate, mode string) {
	ranked := append([]*models.Plate(nil), plates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})

	for _, plate := range ranked {
		if t.remaining <= 0 {
			break
		}
		if t.isScheduled(plate.PlateID) {
			continue
		}
		t.add(plate)
	}
	log.Printf("[timeline] mode=%s scheduled=%d remaining=%.2fh",
		mode, len(t.scheduled), t.remaining)
}

// add schedules a plate and charges its mock exposures against the window.
func (t *timeline) add(plate *models.Plate) {
	needed := 1.0 - plate.Completion
	if needed < 0 {
		needed = 0
	}
	nExp := int(math.Ceil(needed * exposuresPerPlate))
	if nExp < 1 {
		nExp = 1
	}
	t.scheduled = append(t.scheduled, plate)
	t.exposures[plate.PlateID] = nExp
	t.remaining -= float64(nExp) * hoursPerExposure
}

func (t *timeline) Scheduled() []*models.Plate {
	return append([]*models.Plate(nil), t.scheduled...)
}

func (t *timeline) Remaining() float64 {
	return t.remaining
}

func (t *timeline) NewExposures(plateID int) int {
	return t.exposures[plateID]
}

func (t *timeline) isScheduled(plateID int) bool {
	for _, plate := range t.scheduled {
		if plate.PlateID == plateID {
			return true
		}
	}
	return false
}
