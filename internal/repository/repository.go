// Package repository reads retreat snapshots from the backend's PostgreSQL
// database. It uses pgx directly (no ORM) and never writes retreat data.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

// RetreatRepository loads retreats together with their pricing tiers.
type RetreatRepository struct {
	db *pgxpool.Pool
}

// NewRetreatRepository constructs a RetreatRepository.
func NewRetreatRepository(db *pgxpool.Pool) *RetreatRepository {
	return &RetreatRepository{db: db}
}

const retreatColumns = `id, title, description, location, start_date, end_date, status,
	computed_status, available_spots, is_full, max_participants, current_participants,
	price, currency`

// List returns all retreats ordered by start date, undated retreats last.
func (r *RetreatRepository) List(ctx context.Context) ([]model.Retreat, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+retreatColumns+`
		 FROM retreats
		 ORDER BY start_date ASC NULLS LAST, created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list retreats: %w", err)
	}
	defer rows.Close()

	var retreats []model.Retreat
	for rows.Next() {
		rt, err := scanRetreat(rows)
		if err != nil {
			return nil, err
		}
		retreats = append(retreats, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate retreats: %w", err)
	}
	if len(retreats) == 0 {
		return retreats, nil
	}

	tiers, err := r.tiersByRetreat(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range retreats {
		retreats[i].PricingTiers = tiers[retreats[i].ID]
	}
	return retreats, nil
}

// GetByID returns a single retreat or model.ErrNotFound.
func (r *RetreatRepository) GetByID(ctx context.Context, id string) (*model.Retreat, error) {
	if id == "" {
		return nil, model.ErrInvalidID
	}

	rt, err := scanRetreat(r.db.QueryRow(ctx,
		`SELECT `+retreatColumns+` FROM retreats WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}

	tiers, err := r.tiersByRetreat(ctx, id)
	if err != nil {
		return nil, err
	}
	rt.PricingTiers = tiers[id]
	return &rt, nil
}

// tiersByRetreat loads pricing tiers in list order, for one retreat or all when id is empty.
func (r *RetreatRepository) tiersByRetreat(ctx context.Context, id string) (map[string][]model.PricingTier, error) {
	rows, err := r.db.Query(ctx,
		`SELECT retreat_id, name, price, valid_until, payment_options
		 FROM pricing_tiers
		 WHERE $1 = '' OR retreat_id = $1
		 ORDER BY retreat_id, position ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list pricing tiers: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.PricingTier)
	for rows.Next() {
		var (
			retreatID  string
			tier       model.PricingTier
			validUntil *time.Time
		)
		if err := rows.Scan(&retreatID, &tier.Name, &tier.Price, &validUntil, &tier.PaymentOptions); err != nil {
			return nil, fmt.Errorf("scan pricing tier: %w", err)
		}
		tier.ValidUntil = timestamp(validUntil)
		out[retreatID] = append(out[retreatID], tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pricing tiers: %w", err)
	}
	return out, nil
}

func scanRetreat(row pgx.Row) (model.Retreat, error) {
	var (
		rt         model.Retreat
		start, end *time.Time
		status     string
	)
	err := row.Scan(
		&rt.ID, &rt.Title, &rt.Description, &rt.Location, &start, &end, &status,
		&rt.ComputedStatus, &rt.AvailableSpots, &rt.IsFull, &rt.MaxParticipants,
		&rt.CurrentParticipants, &rt.Price, &rt.Currency,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rt, err
		}
		return rt, fmt.Errorf("scan retreat: %w", err)
	}
	rt.StartDate = timestamp(start)
	rt.EndDate = timestamp(end)
	rt.Status = model.RetreatStatus(status)
	return rt, nil
}

func timestamp(t *time.Time) *model.Timestamp {
	if t == nil {
		return nil
	}
	return model.NewTimestamp(t.UTC())
}
