// Package plugger implements the cart allocation and priority-ordering
// engine: it decides which MaNGA plates go into which carts for an observing
// window, minimizing physical replugging, and publishes a cart release order
// so APOGEE can reclaim the least valuable carts first.
package plugger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/albireox/Totoro/internal/cartpool"
	"github.com/albireox/Totoro/internal/models"
	"github.com/albireox/Totoro/internal/site"
	"github.com/albireox/Totoro/internal/store"
	"github.com/albireox/Totoro/internal/timeline"
)

// ErrBadDateRange means the run parameters were malformed: only one of the
// start/end pair supplied, or an empty or inverted window.
var ErrBadDateRange = errors.New("either both dates or neither must be supplied, with start < end")

// Params are the scheduling knobs of a run.
type Params struct {
	NoPlugPriority            int
	ForcePlugPriority         int
	VisibilityHalfWindowHours float64
	OnlyVisiblePlates         bool
}

// Plugger schedules plugging requests: a synchronous, run-to-completion
// batch computation over one snapshot of the plate database.
type Plugger struct {
	store    store.Store
	registry *cartpool.Registry
	params   Params

	// TimelineFactory builds the scheduling collaborator for a window.
	// Tests substitute their own.
	TimelineFactory func(jd0, jd1 float64) timeline.Timeline
}

// New creates a Plugger over a store and cart registry.
func New(st store.Store, registry *cartpool.Registry, params Params) *Plugger {
	return &Plugger{
		store:           st,
		registry:        registry,
		params:          params,
		TimelineFactory: timeline.New,
	}
}

// RunResult is the published plugging request: the cart assignments, the
// release-priority cart order, the per-cart audit lines, and any non-fatal
// warnings raised along the way.
type RunResult struct {
	RunID        uuid.UUID         `json:"runId"`
	StartDate    float64           `json:"startDate,omitempty"`
	EndDate      float64           `json:"endDate,omitempty"`
	Carts        map[int]int       `json:"carts"`
	CartOrder    []int             `json:"cart_order"`
	Unplug       []int             `json:"unplug,omitempty"`
	Dispositions []CartDisposition `json:"dispositions"`
	AuditLines   []string          `json:"auditLines"`
	Warnings     []Warning         `json:"warnings,omitempty"`
}

// CartDisposition is the structured form of one audit line.
type CartDisposition struct {
	Cart    int    `json:"cart"`
	PlateID *int   `json:"plateId,omitempty"`
	Message string `json:"message"`
}

// Run executes a plugging run for the window [jd0, jd1] (Julian Dates).
// With both dates zero the run degrades to reporting the already-plugged,
// incomplete plates; with only one date it fails.
func (p *Plugger) Run(ctx context.Context, jd0, jd1 float64) (*RunResult, error) {
	if jd0 == 0 && jd1 == 0 {
		return p.runNoDates(ctx)
	}
	if jd0 == 0 || jd1 == 0 || jd0 >= jd1 {
		return nil, fmt.Errorf("jd0=%v jd1=%v: %w", jd0, jd1, ErrBadDateRange)
	}
	return p.runFromDates(ctx, jd0, jd1)
}

func (p *Plugger) runFromDates(ctx context.Context, jd0, jd1 float64) (*RunResult, error) {
	log.Printf("[plugger] start date: %v", jd0)
	log.Printf("[plugger] end date: %v", jd1)
	log.Printf("[plugger] scheduling %.2f hours", (jd1-jd0)*24)

	// One snapshot of the active pluggings for the whole run.
	activePluggings, err := p.store.FetchActivePluggings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch active pluggings: %w", err)
	}

	filters := store.Filters{OnlyIncomplete: true}
	if p.params.OnlyVisiblePlates {
		filters.RARanges = site.RAWindow(jd0, jd1, p.params.VisibilityHalfWindowHours)
		log.Printf("[plugger] selecting plates with RA in range %v", filters.RARanges)
	}
	plates, err := p.store.FetchPlatesAtAPO(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("fetch plates at APO: %w", err)
	}
	log.Printf("[plugger] plates found: %d", len(plates))

	candidates := SelectCandidates(plates, p.params.NoPlugPriority, p.params.ForcePlugPriority)
	log.Printf("[plugger] scheduling %d plates", len(candidates))

	tl := p.TimelineFactory(jd0, jd1)

	forced, err := p.store.FetchForcePlugPlates(ctx, p.params.ForcePlugPriority)
	if err != nil {
		return nil, fmt.Errorf("fetch force plug plates: %w", err)
	}
	tl.ForceSchedule(forced)

	// Force-scheduled plates leave the candidate list.
	forcedIDs := map[int]bool{}
	for _, plate := range tl.Scheduled() {
		forcedIDs[plate.PlateID] = true
	}
	remaining := make([]*models.Plate, 0, len(candidates))
	for _, plate := range candidates {
		if !forcedIDs[plate.PlateID] {
			remaining = append(remaining, plate)
		}
	}

	availableCarts := p.registry.AvailableMangaCarts()
	if len(tl.Scheduled()) < len(availableCarts) && tl.Remaining() > 0 {
		tl.Schedule(remaining, "plugger")
	}

	// New-exposure counts feed the cart release order later.
	newExposures := map[int]int{}
	for _, plate := range tl.Scheduled() {
		newExposures[plate.PlateID] = tl.NewExposures(plate.PlateID)
	}

	engine := NewEngine(p.registry, p.params.ForcePlugPriority)
	alloc, err := engine.Allocate(tl.Scheduled(), activePluggings)
	if err != nil {
		return nil, err
	}
	order := engine.BuildCartOrder(alloc, MetricScheduled, newExposures)

	if left := tl.Remaining(); left > 0 {
		log.Printf("[plugger] %.2fh hours not allocated", left)
	} else {
		log.Printf("[plugger] all time has been allocated")
	}

	result := p.assembleResult(alloc, order)
	result.StartDate = jd0
	result.EndDate = jd1
	return result, nil
}

// runNoDates is the degraded mode: no observing window, so only the plugged,
// non-completed plates are reported, ordered by the completion metric.
func (p *Plugger) runNoDates(ctx context.Context) (*RunResult, error) {
	activePluggings, err := p.store.FetchActivePluggings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch active pluggings: %w", err)
	}

	alloc := newAllocation()
	for _, ap := range activePluggings {
		if ap.Plate == nil || !ap.Plate.IsMaNGA() || ap.Plate.IsComplete() {
			continue
		}
		alloc.assign(ap.CartNumber, ap.Plate, "already plugged")
	}

	engine := NewEngine(p.registry, p.params.ForcePlugPriority)
	order := engine.BuildCartOrder(alloc, MetricCompletion, nil)

	result := p.assembleResult(alloc, order)
	result.Warnings = append([]Warning{warningf(WarnNoDates,
		"no JD1, JD2 values provided; returning only plugged, non-completed plates")},
		result.Warnings...)
	return result, nil
}

// assembleResult builds the output the master autoscheduler understands:
// plate ids keyed by cart, plus cart_order with unused MaNGA carts prepended
// (lower priority) and the APOGEE carts, reversed, before those.
func (p *Plugger) assembleResult(alloc *Allocation, order []int) *RunResult {
	inOrder := map[int]bool{}
	for _, cart := range order {
		inOrder[cart] = true
	}
	var nonUsed []int
	for _, cart := range p.registry.MangaCarts() {
		if !inOrder[cart] {
			nonUsed = append(nonUsed, cart)
		}
	}

	apogee := p.registry.ApogeeCarts()
	cartOrder := make([]int, 0, len(apogee)+len(nonUsed)+len(order))
	for i := len(apogee) - 1; i >= 0; i-- {
		cartOrder = append(cartOrder, apogee[i])
	}
	cartOrder = append(cartOrder, nonUsed...)
	cartOrder = append(cartOrder, order...)

	carts := map[int]int{}
	for cart, plate := range alloc.Assignments {
		if plate != nil {
			carts[cart] = plate.PlateID
		}
	}

	var unplug []int
	for cart := range alloc.Unplug {
		unplug = append(unplug, cart)
	}
	sort.Ints(unplug)

	result := &RunResult{
		RunID:        uuid.New(),
		Carts:        carts,
		CartOrder:    cartOrder,
		Unplug:       unplug,
		Dispositions: dispositions(alloc),
		AuditLines:   auditLines(alloc),
		Warnings:     alloc.Warnings,
	}
	for _, line := range result.AuditLines {
		log.Printf("[plugger] %s", line)
	}
	for _, warning := range result.Warnings {
		log.Printf("[plugger] warning: %s", warning)
	}
	return result
}

// dispositions flattens the per-cart audit records, lowest cart first.
func dispositions(alloc *Allocation) []CartDisposition {
	carts := make([]int, 0, len(alloc.Messages))
	for cart := range alloc.Messages {
		carts = append(carts, cart)
	}
	sort.Ints(carts)

	out := make([]CartDisposition, 0, len(carts))
	for _, cart := range carts {
		msg := alloc.Messages[cart]
		disposition := CartDisposition{Cart: cart, Message: msg.Text}
		if msg.Plate != nil {
			plateID := msg.Plate.PlateID
			disposition.PlateID = &plateID
		}
		out = append(out, disposition)
	}
	return out
}

// auditLines renders one line per considered cart, lowest cart first.
// Operators execute the plan from these lines.
func auditLines(alloc *Allocation) []string {
	carts := make([]int, 0, len(alloc.Messages))
	for cart := range alloc.Messages {
		carts = append(carts, cart)
	}
	sort.Ints(carts)

	lines := make([]string, 0, len(carts))
	for _, cart := range carts {
		lines = append(lines, formatCartLine(cart, alloc.Messages[cart]))
	}
	return lines
}

func formatCartLine(cart int, msg CartMessage) string {
	if msg.Plate == nil {
		if msg.Text == "" {
			return fmt.Sprintf("Cart #%d -> empty", cart)
		}
		return fmt.Sprintf("Cart #%d -> %s", cart, msg.Text)
	}

	notes := []string{}
	if msg.Text != "" {
		notes = append(notes, msg.Text)
	}
	if msg.Plate.Status == "Shipped" && msg.Plate.Location == "APO" {
		notes = append(notes, "plate has not been marked")
	}
	if msg.Plate.Replug {
		notes = append(notes, "replug")
	}

	line := fmt.Sprintf("Cart #%d -> plate_id=%d", cart, msg.Plate.PlateID)
	if len(notes) > 0 {
		line += " (" + strings.Join(notes, ", ") + ")"
	}
	return line
}
