package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/albireox/Totoro/internal/models"
)

var ErrNotFound = errors.New("not found")

// Filters restrict which plates FetchPlatesAtAPO returns.
type Filters struct {
	// OnlyIncomplete drops plates whose completion has reached 1.
	OnlyIncomplete bool

	// OnlyMarked restricts to plates marked Accepted.
	OnlyMarked bool

	// RARanges, when set, restricts plates to the given right-ascension
	// intervals in degrees.
	RARanges [][2]float64
}

// Store supplies the transactionally consistent snapshots the plugger works
// from. One run reads its active-plugging snapshot once, at the start.
type Store interface {
	FetchActivePluggings(ctx context.Context) ([]models.ActivePlugging, error)
	FetchPlatesAtAPO(ctx context.Context, f Filters) ([]*models.Plate, error)
	FetchForcePlugPlates(ctx context.Context, minPriority int) ([]*models.Plate, error)
	Ping(ctx context.Context) error
}

// PGStore reads plate, plugging, and set records from Postgres.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PGStore) FetchActivePluggings(ctx context.Context) ([]models.ActivePlugging, error) {
	query := `
		SELECT cart_number, plate_id FROM pluggings
		WHERE active ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active pluggings: %w", err)
	}
	defer rows.Close()

	type activeRow struct {
		cart    int
		plateID int
	}
	var active []activeRow
	var plateIDs []int
	for rows.Next() {
		var row activeRow
		if err := rows.Scan(&row.cart, &row.plateID); err != nil {
			return nil, fmt.Errorf("scan active plugging: %w", err)
		}
		active = append(active, row)
		plateIDs = append(plateIDs, row.plateID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	plates, err := s.loadPlates(ctx, plateIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.ActivePlugging, 0, len(active))
	for _, row := range active {
		plate, ok := plates[row.plateID]
		if !ok {
			return nil, fmt.Errorf("active plugging for plate %d: %w", row.plateID, ErrNotFound)
		}
		out = append(out, models.ActivePlugging{CartNumber: row.cart, Plate: plate})
	}
	return out, nil
}

func (s *PGStore) FetchPlatesAtAPO(ctx context.Context, f Filters) ([]*models.Plate, error) {
	clauses := []string{"location = 'APO'", "survey_mode LIKE '%MaNGA%'"}
	var args []interface{}

	if f.OnlyIncomplete {
		clauses = append(clauses, "completion < 1")
	}
	if f.OnlyMarked {
		clauses = append(clauses, "status = 'Accepted'")
	}
	if len(f.RARanges) > 0 {
		var raClauses []string
		for _, r := range f.RARanges {
			raClauses = append(raClauses,
				fmt.Sprintf("(ra >= $%d AND ra < $%d)", len(args)+1, len(args)+2))
			args = append(args, r[0], r[1])
		}
		clauses = append(clauses, "("+strings.Join(raClauses, " OR ")+")")
	}

	query := fmt.Sprintf(
		`SELECT plate_id FROM plates WHERE %s ORDER BY plate_id`,
		strings.Join(clauses, " AND "))

	ids, err := s.queryPlateIDs(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plates at APO: %w", err)
	}
	return s.loadOrdered(ctx, ids)
}

func (s *PGStore) FetchForcePlugPlates(ctx context.Context, minPriority int) ([]*models.Plate, error) {
	query := `
		SELECT plate_id FROM plates
		WHERE survey_mode LIKE '%MaNGA%' AND priority >= $1
		ORDER BY plate_id
	`
	ids, err := s.queryPlateIDs(ctx, query, minPriority)
	if err != nil {
		return nil, fmt.Errorf("query force plug plates: %w", err)
	}
	return s.loadOrdered(ctx, ids)
}

func (s *PGStore) queryPlateIDs(ctx context.Context, query string, args ...interface{}) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PGStore) loadOrdered(ctx context.Context, ids []int) ([]*models.Plate, error) {
	plates, err := s.loadPlates(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Plate, 0, len(ids))
	for _, id := range ids {
		if plate, ok := plates[id]; ok {
			out = append(out, plate)
		}
	}
	return out, nil
}

// loadPlates hydrates plates with their pluggings and sets in three queries.
func (s *PGStore) loadPlates(ctx context.Context, ids []int) (map[int]*models.Plate, error) {
	plates := map[int]*models.Plate{}
	if len(ids) == 0 {
		return plates, nil
	}

	query := `
		SELECT plate_id, priority, survey_mode, status, location, ra,
		       completion, completion_all
		FROM plates WHERE plate_id = ANY($1)
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query plates: %w", err)
	}
	for rows.Next() {
		plate := &models.Plate{}
		if err := rows.Scan(&plate.PlateID, &plate.Priority, &plate.SurveyMode,
			&plate.Status, &plate.Location, &plate.RA,
			&plate.Completion, &plate.CompletionAll); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan plate: %w", err)
		}
		plates[plate.PlateID] = plate
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pluggingQuery := `
		SELECT id, plate_id, cart_number, fscan_mjd, active
		FROM pluggings WHERE plate_id = ANY($1) ORDER BY id
	`
	rows, err = s.db.QueryContext(ctx, pluggingQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query pluggings: %w", err)
	}
	for rows.Next() {
		var plugging models.Plugging
		if err := rows.Scan(&plugging.ID, &plugging.PlateID, &plugging.CartNumber,
			&plugging.FScanMJD, &plugging.Active); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan plugging: %w", err)
		}
		if plate, ok := plates[plugging.PlateID]; ok {
			plate.Pluggings = append(plate.Pluggings, plugging)
			if plugging.Active {
				plate.Plugged = true
				plate.ActiveCartNumber = plugging.CartNumber
			}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	setQuery := `
		SELECT id, plate_id, status FROM sets
		WHERE plate_id = ANY($1) ORDER BY id
	`
	rows, err = s.db.QueryContext(ctx, setQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	for rows.Next() {
		var set models.Set
		if err := rows.Scan(&set.ID, &set.PlateID, &set.Status); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan set: %w", err)
		}
		if plate, ok := plates[set.PlateID]; ok {
			plate.Sets = append(plate.Sets, set)
		}
	}
	rows.Close()
	return plates, rows.Err()
}
