package models

import "strings"

// SetStatusIncomplete marks an observation set that still needs exposures
// before it can contribute to plate completion.
const SetStatusIncomplete = "Incomplete"

// Set is one observation subdivision of a plate.
type Set struct {
	ID      int    `json:"id"`
	PlateID int    `json:"plateId"`
	Status  string `json:"status"`
}

// Plugging is a historical record of a plate being mounted in a cart.
// FScanMJD is the MJD of the mapping scan taken when the plate was plugged;
// the plugging with the highest FScanMJD is the most recent one.
type Plugging struct {
	ID         int  `json:"id"`
	PlateID    int  `json:"plateId"`
	CartNumber int  `json:"cartNumber"`
	FScanMJD   int  `json:"fscanMjd"`
	Active     bool `json:"active"`
}

// ActivePlugging states that a plate currently occupies a cart.
type ActivePlugging struct {
	CartNumber int    `json:"cartNumber"`
	Plate      *Plate `json:"plate"`
}

// Plate is a work-item: a drilled plate progressing towards completion via
// exposures grouped into sets. Plates are rebuilt from persisted records for
// every run and never written back.
type Plate struct {
	PlateID    int     `json:"plateId"`
	Priority   int     `json:"priority"`
	SurveyMode string  `json:"surveyMode"`
	Status     string  `json:"status"`
	Location   string  `json:"location"`
	RA         float64 `json:"ra"`

	// Completion excludes incomplete sets; CompletionAll includes them.
	// Both can exceed 1 for over-observed plates.
	Completion    float64 `json:"completion"`
	CompletionAll float64 `json:"completionAll"`

	Plugged          bool `json:"plugged"`
	ActiveCartNumber int  `json:"activeCartNumber,omitempty"`

	// Replug is set by the candidate selector when the plate has partial
	// completion but is not currently mounted.
	Replug bool `json:"replug,omitempty"`

	Pluggings []Plugging `json:"pluggings,omitempty"`
	Sets      []Set      `json:"sets,omitempty"`
}

// IsComplete reports whether the plate has reached full completion.
func (p *Plate) IsComplete() bool {
	return p.Completion >= 1
}

// IsMaNGA reports whether the plate's current survey mode is a MaNGA mode.
func (p *Plate) IsMaNGA() bool {
	return strings.Contains(p.SurveyMode, "MaNGA")
}

// HasIncompleteSets reports whether any set still needs exposures.
func (p *Plate) HasIncompleteSets() bool {
	for _, set := range p.Sets {
		if set.Status == SetStatusIncomplete {
			return true
		}
	}
	return false
}

// LastPluggedCart returns the cart of the most recent plugging (highest
// FScanMJD). ok is false when the plate has no plugging history.
func (p *Plate) LastPluggedCart() (cart int, ok bool) {
	bestMJD := -1
	for _, plugging := range p.Pluggings {
		if plugging.FScanMJD > bestMJD {
			bestMJD = plugging.FScanMJD
			cart = plugging.CartNumber
		}
	}
	return cart, bestMJD >= 0
}
