package plugger

import (
	"fmt"
	"log"

	"github.com/albireox/Totoro/internal/cartpool"
	"github.com/albireox/Totoro/internal/models"
)

// CartMessage is the audit record for one cart: the plate the message refers
// to (assigned plate or prior occupant) and the disposition text.
type CartMessage struct {
	Plate *models.Plate
	Text  string
}

// Allocation is the result of one allocation run. It is built fresh by
// Allocate and owned by the caller afterwards; nothing is shared across runs.
type Allocation struct {
	// Assignments maps cart number to its plate. Carts that end the run
	// without a MaNGA plate are absent.
	Assignments map[int]*models.Plate

	// Messages holds one audit record per considered cart.
	Messages map[int]CartMessage

	// Unplug flags carts whose occupant must be unmounted.
	Unplug map[int]bool

	Warnings []Warning

	// cartSeq is the cart iteration order: available carts in registry
	// order, followed by any cart pulled in by a plate already plugged
	// outside the available pool.
	cartSeq []int
}

func newAllocation() *Allocation {
	return &Allocation{
		Assignments: map[int]*models.Plate{},
		Messages:    map[int]CartMessage{},
		Unplug:      map[int]bool{},
	}
}

// assign records a plate into a cart, tracking iteration order for carts not
// seen before.
func (a *Allocation) assign(cart int, plate *models.Plate, msg string) {
	if _, seen := a.Assignments[cart]; !seen {
		known := false
		for _, c := range a.cartSeq {
			if c == cart {
				known = true
				break
			}
		}
		if !known {
			a.cartSeq = append(a.cartSeq, cart)
		}
	}
	a.Assignments[cart] = plate
	a.Messages[cart] = CartMessage{Plate: plate, Text: msg}
}

// CartSeq returns the cart iteration order.
func (a *Allocation) CartSeq() []int {
	return append([]int(nil), a.cartSeq...)
}

// Engine allocates candidate plates to carts.
type Engine struct {
	registry          *cartpool.Registry
	forcePlugPriority int
}

// NewEngine creates an allocation engine over a cart registry.
func NewEngine(registry *cartpool.Registry, forcePlugPriority int) *Engine {
	return &Engine{registry: registry, forcePlugPriority: forcePlugPriority}
}

// Allocate assigns candidate plates to carts in three phases:
//
//  1. plates already plugged keep their cart;
//  2. replugs go back to the cart of their most recent plugging, when that
//     cart is still available; a replug whose cart is taken falls through to
//     phase 3;
//  3. remaining plates consume the remaining carts in priority order.
//
// Carts left unassigned get a disposition: occupants at full completion are
// marked for unplugging, started MaNGA occupants stay mounted, everything
// else is left alone.
//
// Candidates must arrive ranked by desirability: when there are more plates
// than carts the list is truncated to the cart count. The active-plugging
// snapshot is read once by the caller and used for the whole run.
func (e *Engine) Allocate(plates []*models.Plate, activePluggings []models.ActivePlugging) (*Allocation, error) {
	alloc := newAllocation()
	carts := e.registry.AvailableMangaCarts()
	alloc.cartSeq = append([]int(nil), carts...)

	if len(plates) > len(carts) {
		alloc.Warnings = append(alloc.Warnings, warningf(WarnTooManyPlates,
			"%d plates to allocate but only %d carts available; using the first %d plates",
			len(plates), len(carts), len(carts)))
		plates = plates[:len(carts)]
	}

	// Status snapshot for every undecided cart, in registry order.
	undecided := make([]CartStatus, 0, len(carts))
	byCart := make(map[int]CartStatus, len(carts))
	for _, cart := range carts {
		status, err := ClassifyCart(activePluggings, cart)
		if err != nil {
			return nil, err
		}
		undecided = append(undecided, status)
		byCart[cart] = status
	}

	remove := func(cart int) {
		for i, status := range undecided {
			if status.Cart == cart {
				undecided = append(undecided[:i], undecided[i+1:]...)
				return
			}
		}
	}
	isUndecided := func(cart int) bool {
		for _, status := range undecided {
			if status.Cart == cart {
				return true
			}
		}
		return false
	}

	allocated := map[int]bool{}

	// Phase 1: plates already plugged stay where they are.
	for _, plate := range plates {
		if !plate.Plugged {
			continue
		}
		cart := plate.ActiveCartNumber
		alloc.assign(cart, plate, "already plugged")
		allocated[plate.PlateID] = true
		remove(cart)
	}

	// Phase 2: replugs back into their last cart.
	for _, plate := range plates {
		if allocated[plate.PlateID] || !plate.Replug {
			continue
		}
		cart, ok := plate.LastPluggedCart()
		if !ok || e.registry.IsOffline(cart) || !isUndecided(cart) {
			alloc.Warnings = append(alloc.Warnings, warningf(WarnReplugUnavailable,
				"not plugging plate %d in its original cart %d because it is not available",
				plate.PlateID, cart))
			continue
		}
		alloc.assign(cart, plate, byCart[cart].Code.ReplaceMessage())
		allocated[plate.PlateID] = true
		remove(cart)
	}

	// Phase 3: remaining plates take the remaining carts by priority.
	sortedCarts := PrioritizeCarts(undecided)
	unallocated := 0
	for _, plate := range plates {
		if allocated[plate.PlateID] {
			continue
		}
		if len(sortedCarts) == 0 {
			unallocated++
			continue
		}
		status := sortedCarts[0]
		sortedCarts = sortedCarts[1:]

		msg := status.Code.ReplaceMessage()
		if status.Code == StatusMaNGAStarted {
			msg += fmt.Sprintf(", completion=%.2f", status.Completion)
		}
		alloc.assign(status.Cart, plate, msg)
		allocated[plate.PlateID] = true
	}
	if unallocated > 0 {
		alloc.Warnings = append(alloc.Warnings, warningf(WarnUnallocated,
			"%d plates have not been allocated", unallocated))
	}

	// Dispositions for carts nobody claimed.
	for _, status := range sortedCarts {
		switch {
		case status.Completion >= 1:
			alloc.Unplug[status.Cart] = true
			alloc.Messages[status.Cart] = CartMessage{Plate: status.Plate, Text: "unplug"}
		case status.Code != StatusNoMaNGAPlate && status.Plate != nil:
			// A started MaNGA plate stays mounted.
			msg := "unchanged"
			if status.Plate.Plugged {
				msg = "already plugged"
			}
			alloc.Assignments[status.Cart] = status.Plate
			alloc.Messages[status.Cart] = CartMessage{Plate: status.Plate, Text: msg}
		default:
			alloc.Messages[status.Cart] = CartMessage{Plate: status.Plate, Text: "not doing anything"}
		}
	}

	log.Printf("[plugger] allocated %d of %d plates over %d carts",
		len(allocated), len(plates), len(carts))

	return alloc, nil
}
