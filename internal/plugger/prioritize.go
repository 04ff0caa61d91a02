package plugger

import "sort"

// PrioritizeCarts orders cart statuses by how cheap it is to reuse or
// override the cart: empty and finished carts cost nothing, a barely-started
// plate costs less to override than a mostly-finished one. Relative input
// order is preserved within each bucket; started carts are additionally
// sorted by ascending completion.
func PrioritizeCarts(statuses []CartStatus) []CartStatus {
	var empty, noMaNGA, complete, noStarted, unknown, started []CartStatus

	for _, status := range statuses {
		switch status.Code {
		case StatusEmpty:
			empty = append(empty, status)
		case StatusNoMaNGAPlate:
			noMaNGA = append(noMaNGA, status)
		case StatusMaNGAComplete:
			complete = append(complete, status)
		case StatusMaNGANotStarted:
			noStarted = append(noStarted, status)
		case StatusMaNGAStarted:
			started = append(started, status)
		default:
			unknown = append(unknown, status)
		}
	}

	sort.SliceStable(started, func(i, j int) bool {
		return started[i].Completion < started[j].Completion
	})

	ordered := make([]CartStatus, 0, len(statuses))
	ordered = append(ordered, empty...)
	ordered = append(ordered, complete...)
	ordered = append(ordered, unknown...)
	ordered = append(ordered, noMaNGA...)
	ordered = append(ordered, noStarted...)
	ordered = append(ordered, started...)
	return ordered
}
