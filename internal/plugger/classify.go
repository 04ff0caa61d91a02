package plugger

import (
	"errors"
	"fmt"

	"github.com/albireox/Totoro/internal/models"
)

// ErrDuplicateActivePlugging is a persistence-layer consistency violation:
// a cart reported with more than one active plugging. The run aborts.
var ErrDuplicateActivePlugging = errors.New("cart has more than one active plugging")

// StatusCode classifies what occupies a cart.
type StatusCode int

const (
	StatusEmpty           StatusCode = 0
	StatusNoMaNGAPlate    StatusCode = 1
	StatusMaNGAComplete   StatusCode = 2
	StatusMaNGANotStarted StatusCode = 3
	StatusMaNGAStarted    StatusCode = 4
	StatusUnknown         StatusCode = 10
)

var statusLabels = map[StatusCode]string{
	StatusEmpty:           "empty",
	StatusNoMaNGAPlate:    "noMaNGAplate",
	StatusMaNGAComplete:   "MaNGA_complete",
	StatusMaNGANotStarted: "MaNGA_noStarted",
	StatusMaNGAStarted:    "MaNGA_started",
	StatusUnknown:         "unknown",
}

var replaceMessages = map[StatusCode]string{
	StatusEmpty:           "empty cart",
	StatusNoMaNGAPlate:    "replacing non-MaNGA plate",
	StatusMaNGAComplete:   "replacing complete MaNGA plate",
	StatusMaNGANotStarted: "replacing non-started MaNGA plate",
	StatusMaNGAStarted:    "replacing started MaNGA plate",
	StatusUnknown:         "replacing plate with unknown status",
}

// Label returns the status label. Codes outside the known set map to
// "unknown" rather than panicking; future classification rules may produce
// them.
func (c StatusCode) Label() string {
	if label, ok := statusLabels[c]; ok {
		return label
	}
	return statusLabels[StatusUnknown]
}

// ReplaceMessage returns the audit message for replacing this cart's
// occupant.
func (c StatusCode) ReplaceMessage() string {
	if msg, ok := replaceMessages[c]; ok {
		return msg
	}
	return replaceMessages[StatusUnknown]
}

// CartStatus describes what, if anything, occupies a cart. It is derived
// once per run from the active-plugging snapshot and never persisted.
type CartStatus struct {
	Cart       int
	Plate      *models.Plate
	Code       StatusCode
	Label      string
	Completion float64
}

// ClassifyCart derives the status of a cart from the active-plugging
// snapshot. More than one active plugging for the same cart is fatal.
func ClassifyCart(activePluggings []models.ActivePlugging, cart int) (CartStatus, error) {
	var occupants []*models.Plate
	for _, ap := range activePluggings {
		if ap.CartNumber == cart {
			occupants = append(occupants, ap.Plate)
		}
	}

	switch {
	case len(occupants) == 0:
		return CartStatus{Cart: cart, Code: StatusEmpty, Label: StatusEmpty.Label()}, nil
	case len(occupants) > 1:
		return CartStatus{}, fmt.Errorf("cart #%d: %w", cart, ErrDuplicateActivePlugging)
	}

	plate := occupants[0]

	if !plate.IsMaNGA() {
		return CartStatus{Cart: cart, Plate: plate,
			Code: StatusNoMaNGAPlate, Label: StatusNoMaNGAPlate.Label()}, nil
	}
	if plate.IsComplete() {
		return CartStatus{Cart: cart, Plate: plate,
			Code: StatusMaNGAComplete, Label: StatusMaNGAComplete.Label(), Completion: 1}, nil
	}
	if plate.Completion == 0 {
		return CartStatus{Cart: cart, Plate: plate,
			Code: StatusMaNGANotStarted, Label: StatusMaNGANotStarted.Label()}, nil
	}
	return CartStatus{Cart: cart, Plate: plate,
		Code: StatusMaNGAStarted, Label: StatusMaNGAStarted.Label(),
		Completion: plate.Completion}, nil
}
