package store

import (
	"context"
	"sort"
	"sync"

	"github.com/albireox/Totoro/internal/models"
)

// MemoryStore provides an in-memory implementation useful for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	plates map[int]*models.Plate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plates: map[int]*models.Plate{}}
}

// AddPlate registers a plate. The store keeps its own copy so a running
// allocation always sees one coherent snapshot.
func (m *MemoryStore) AddPlate(plate *models.Plate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plates[plate.PlateID] = plate
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) FetchActivePluggings(ctx context.Context) ([]models.ActivePlugging, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.ActivePlugging
	for _, plate := range m.sortedPlates() {
		for _, plugging := range plate.Pluggings {
			if plugging.Active {
				out = append(out, models.ActivePlugging{
					CartNumber: plugging.CartNumber,
					Plate:      copyPlate(plate),
				})
			}
		}
	}
	return out, nil
}

func (m *MemoryStore) FetchPlatesAtAPO(ctx context.Context, f Filters) ([]*models.Plate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Plate
	for _, plate := range m.sortedPlates() {
		if plate.Location != "APO" || !plate.IsMaNGA() {
			continue
		}
		if f.OnlyIncomplete && plate.Completion >= 1 {
			continue
		}
		if f.OnlyMarked && plate.Status != "Accepted" {
			continue
		}
		if len(f.RARanges) > 0 && !inRARanges(plate.RA, f.RARanges) {
			continue
		}
		out = append(out, copyPlate(plate))
	}
	return out, nil
}

func (m *MemoryStore) FetchForcePlugPlates(ctx context.Context, minPriority int) ([]*models.Plate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Plate
	for _, plate := range m.sortedPlates() {
		if plate.IsMaNGA() && plate.Priority >= minPriority {
			out = append(out, copyPlate(plate))
		}
	}
	return out, nil
}

func (m *MemoryStore) sortedPlates() []*models.Plate {
	plates := make([]*models.Plate, 0, len(m.plates))
	for _, plate := range m.plates {
		plates = append(plates, plate)
	}
	sort.Slice(plates, func(i, j int) bool {
		return plates[i].PlateID < plates[j].PlateID
	})
	return plates
}

func inRARanges(ra float64, ranges [][2]float64) bool {
	for _, r := range ranges {
		if ra >= r[0] && ra < r[1] {
			return true
		}
	}
	return false
}

func copyPlate(plate *models.Plate) *models.Plate {
	cp := *plate
	cp.Pluggings = append([]models.Plugging(nil), plate.Pluggings...)
	cp.Sets = append([]models.Set(nil), plate.Sets...)
	return &cp
}
