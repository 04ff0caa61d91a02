package plugger

import (
	"fmt"
	"sort"

	"github.com/albireox/Totoro/internal/models"
)

// OrderMetric selects the comparator used to order carts for release.
type OrderMetric int

const (
	// MetricScheduled orders carts by the number of new exposures planned
	// this run. Used after a full allocation run.
	MetricScheduled OrderMetric = iota

	// MetricCompletion orders carts by plate completion, protecting plates
	// with incomplete sets. Used in the degraded no-dates mode.
	MetricCompletion
)

// ParseMetric converts the wire value of a metric.
func ParseMetric(s string) (OrderMetric, error) {
	switch s {
	case "scheduled":
		return MetricScheduled, nil
	case "completion":
		return MetricCompletion, nil
	}
	return 0, fmt.Errorf("metric must be 'scheduled' or 'completion', got %q", s)
}

func (m OrderMetric) String() string {
	if m == MetricCompletion {
		return "completion"
	}
	return "scheduled"
}

type orderEntry struct {
	cart  int
	plate *models.Plate
}

// BuildCartOrder computes the release-priority order of the allocated carts,
// lowest retention value first. An external consumer reclaiming carts takes
// them from the front.
//
// Both metrics put completed plates first (cheapest to give up) and
// force-plug plates last. MetricScheduled orders the middle by ascending
// planned new exposures, with offline carts slotted in right after the
// completed bucket. MetricCompletion orders the middle by ascending
// completion, keeps plates with incomplete sets at the very back (counting
// incomplete-set credit for those), and slots offline carts in just before
// the first plate with an incomplete set.
func (e *Engine) BuildCartOrder(alloc *Allocation, metric OrderMetric, newExposures map[int]int) []int {
	var completed, scheduled, forcePlug []orderEntry

	for _, cart := range alloc.cartSeq {
		plate := alloc.Assignments[cart]
		if plate == nil {
			continue
		}
		switch {
		case plate.Priority == e.forcePlugPriority:
			forcePlug = append(forcePlug, orderEntry{cart, plate})
		case plate.IsComplete():
			completed = append(completed, orderEntry{cart, plate})
		default:
			scheduled = append(scheduled, orderEntry{cart, plate})
		}
	}

	used := map[int]bool{}
	for _, entry := range completed {
		used[entry.cart] = true
	}
	for _, entry := range scheduled {
		used[entry.cart] = true
	}
	for _, entry := range forcePlug {
		used[entry.cart] = true
	}

	var offline []orderEntry
	for _, cart := range e.registry.OfflineCarts() {
		if !used[cart] {
			offline = append(offline, orderEntry{cart: cart})
		}
	}

	var ordered []orderEntry
	switch metric {
	case MetricCompletion:
		var without, with []orderEntry
		for _, entry := range scheduled {
			if entry.plate.HasIncompleteSets() {
				with = append(with, entry)
			} else {
				without = append(without, entry)
			}
		}
		sort.SliceStable(without, func(i, j int) bool {
			return without[i].plate.Completion < without[j].plate.Completion
		})
		// Incomplete-set plates count their incomplete-set credit and go
		// last: they have observational work in flight to protect.
		sort.SliceStable(with, func(i, j int) bool {
			return with[i].plate.CompletionAll < with[j].plate.CompletionAll
		})

		ordered = append(ordered, completed...)
		ordered = append(ordered, without...)
		ordered = append(ordered, offline...)
		ordered = append(ordered, with...)
		ordered = append(ordered, forcePlug...)

	default:
		sort.SliceStable(scheduled, func(i, j int) bool {
			return newExposures[scheduled[i].plate.PlateID] < newExposures[scheduled[j].plate.PlateID]
		})

		ordered = append(ordered, completed...)
		ordered = append(ordered, offline...)
		ordered = append(ordered, scheduled...)
		ordered = append(ordered, forcePlug...)
	}

	carts := make([]int, len(ordered))
	for i, entry := range ordered {
		carts[i] = entry.cart
	}
	return carts
}
