// Package audit publishes the outcome of a plugging run: one event per cart
// disposition streamed to Kafka, and the full run report archived to S3.
// Operators and the master autoscheduler consume these records to execute
// and reconcile the plan.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/albireox/Totoro/internal/plugger"
)

// Event is one cart disposition from a run.
type Event struct {
	ID      uuid.UUID `json:"id"`
	RunID   uuid.UUID `json:"runId"`
	Cart    int       `json:"cart"`
	PlateID *int      `json:"plateId,omitempty"`
	Message string    `json:"message"`
	TS      time.Time `json:"ts"`
}

// RunReport is the archived record of a full run.
type RunReport struct {
	RunID     uuid.UUID   `json:"runId"`
	StartDate float64     `json:"startDate,omitempty"`
	EndDate   float64     `json:"endDate,omitempty"`
	Carts     map[int]int `json:"carts"`
	CartOrder []int       `json:"cart_order"`
	Events    []Event     `json:"events"`
	Warnings  []string    `json:"warnings,omitempty"`
	TS        time.Time   `json:"ts"`
}

// ReportFromRun converts a plugging run result into its audit report.
func ReportFromRun(result *plugger.RunResult) *RunReport {
	now := time.Now().UTC()
	report := &RunReport{
		RunID:     result.RunID,
		StartDate: result.StartDate,
		EndDate:   result.EndDate,
		Carts:     result.Carts,
		CartOrder: result.CartOrder,
		TS:        now,
	}
	for _, disposition := range result.Dispositions {
		report.Events = append(report.Events, Event{
			ID:      uuid.New(),
			RunID:   result.RunID,
			Cart:    disposition.Cart,
			PlateID: disposition.PlateID,
			Message: disposition.Message,
			TS:      now,
		})
	}
	for _, warning := range result.Warnings {
		report.Warnings = append(report.Warnings, warning.String())
	}
	return report
}

// Pipeline fans a run report out to the configured sinks. Either sink may be
// nil. Publishing failures are logged, not fatal: the allocation has already
// been returned to the caller.
type Pipeline struct {
	producer *KafkaProducer
	archiver *S3Archiver
}

func NewPipeline(producer *KafkaProducer, archiver *S3Archiver) *Pipeline {
	return &Pipeline{producer: producer, archiver: archiver}
}

// Publish streams the report's events and archives the report.
func (p *Pipeline) Publish(ctx context.Context, report *RunReport) {
	if p == nil || report == nil {
		return
	}
	if p.producer != nil {
		if err := p.producer.ProduceEvents(ctx, report.Events); err != nil {
			log.Printf("[audit] kafka publish failed: %v", err)
		}
	}
	if p.archiver != nil {
		if err := p.archiver.ArchiveRun(ctx, report); err != nil {
			log.Printf("[audit] s3 archive failed: %v", err)
		}
	}
}
