package plugger

import (
	"log"

	"github.com/albireox/Totoro/internal/models"
)

// SelectCandidates filters the pool of eligible plates down to the plates
// worth scheduling this run. Plates at or above the force-plug priority and
// plates that are already plugged are always retained. The rest are dropped
// when their priority is at or below the no-plug floor or when they are
// already complete. Retained plates with partial completion (counting
// incomplete-set credit) that are not mounted get tagged as replugs.
func SelectCandidates(plates []*models.Plate, noPlugPriority, forcePlugPriority int) []*models.Plate {
	selected := make([]*models.Plate, 0, len(plates))
	picked := map[int]bool{}

	for _, plate := range plates {
		if plate.Priority >= forcePlugPriority || plate.Plugged {
			selected = append(selected, plate)
			picked[plate.PlateID] = true
		}
	}

	for _, plate := range plates {
		if picked[plate.PlateID] {
			continue
		}
		if plate.Priority <= noPlugPriority {
			log.Printf("[plugger] skipped plate_id=%d because of low priority", plate.PlateID)
			continue
		}
		if plate.IsComplete() {
			log.Printf("[plugger] skipped plate_id=%d because is complete", plate.PlateID)
			continue
		}
		if plate.CompletionAll > 0 {
			plate.Replug = true
		}
		selected = append(selected, plate)
	}

	return selected
}
