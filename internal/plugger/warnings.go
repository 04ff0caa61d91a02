package plugger

import "fmt"

// WarningKind distinguishes the non-fatal conditions a run can surface.
// Warnings are values on the run result, not errors: the run continues.
type WarningKind int

const (
	// WarnNoDates: no scheduling window was supplied; the run degraded to
	// reporting already-plugged incomplete plates.
	WarnNoDates WarningKind = iota

	// WarnTooManyPlates: more candidate plates than available carts; the
	// candidate list was truncated.
	WarnTooManyPlates

	// WarnUnallocated: candidate plates remained without a cart after the
	// greedy fill.
	WarnUnallocated

	// WarnReplugUnavailable: a replug's preferred cart was offline or
	// unavailable and the plate fell through to the greedy fill.
	WarnReplugUnavailable
)

func (k WarningKind) String() string {
	switch k {
	case WarnNoDates:
		return "no_dates"
	case WarnTooManyPlates:
		return "too_many_plates"
	case WarnUnallocated:
		return "unallocated"
	case WarnReplugUnavailable:
		return "replug_unavailable"
	}
	return "unknown"
}

// Warning is a non-fatal condition surfaced to the operator.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

func warningf(kind WarningKind, format string, args ...interface{}) Warning {
	return Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
