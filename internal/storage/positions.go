package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/ranking"
	"github.com/meur/tierrank/pkg/logger"
)

// --- Positions ---

// RecomputePositions rebuilds a dense 0..N-1 position sequence grouped by
// tier rank, unassigned last, keeping the current order inside each group.
// It returns the number of items renumbered.
func (s *Store) RecomputePositions(ctx context.Context) (int, error) {
	var n int
	err := s.withTx(ctx, "recompute_positions", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		n, err = s.recompute(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.observeRecompute(n)
	return n, nil
}

// noRecompute marks a committed mutation that did not renumber positions.
const noRecompute = -1

// observeRecompute records the size of a committed recompute. Callers invoke
// it only after withTx succeeds, so rolled-back work is never reported.
func (s *Store) observeRecompute(n int) {
	if n != noRecompute {
		s.metrics.SetRecomputed(n)
	}
}

// recompute runs the clear-then-refill walk inside tx.
func (s *Store) recompute(ctx context.Context, tx *sql.Tx) (int, error) {
	tiers, err := loadTiers(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("recompute: load tiers: %w", err)
	}
	items, err := loadItems(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("recompute: load items: %w", err)
	}
	sequence := ranking.Sequence(tiers, items)

	if _, err := tx.ExecContext(ctx, `UPDATE items SET position = NULL`); err != nil {
		return 0, fmt.Errorf("recompute: clear positions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE items SET position = ? WHERE name = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, item := range sequence {
		if _, err := stmt.ExecContext(ctx, *item.Position, item.Name); err != nil {
			return 0, fmt.Errorf("recompute: position %d for %q: %w", *item.Position, item.Name, err)
		}
	}

	return len(sequence), nil
}

// ApplyReorder commits a complete client-computed ordering verbatim. The
// list is validated first; then every position is cleared and each
// assignment written. A failure at any point rolls back the whole call.
func (s *Store) ApplyReorder(ctx context.Context, assignments []models.Assignment) error {
	err := s.withTx(ctx, "apply_reorder", func(ctx context.Context, tx *sql.Tx) error {
		tiers, err := loadTiers(ctx, tx)
		if err != nil {
			return err
		}
		items, err := loadItems(ctx, tx)
		if err != nil {
			return err
		}
		plan, err := ranking.PlanReorder(tiers, items, assignments, s.omitted)
		if err != nil {
			return err
		}

		ids := make(map[string]string, len(tiers))
		for _, t := range tiers {
			ids[t.Name] = t.ID
		}

		if _, err := tx.ExecContext(ctx, `UPDATE items SET position = NULL`); err != nil {
			return fmt.Errorf("reorder: clear positions: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `UPDATE items SET tier_id = ?, position = ? WHERE name = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range plan {
			var tid sql.NullString
			if a.Tier != nil {
				tid = sql.NullString{String: ids[*a.Tier], Valid: true}
			}
			res, err := stmt.ExecContext(ctx, tid, *a.Position, a.Item)
			if err != nil {
				return fmt.Errorf("reorder: %q to position %d: %w", a.Item, *a.Position, err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n != 1 {
				return ranking.NotFound("item", a.Item)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "reorder applied", logger.Int("assignments", len(assignments)))
	return nil
}

// Board returns every tier with its ordered items plus the unassigned lane,
// read from one snapshot.
func (s *Store) Board(ctx context.Context) (*models.Board, error) {
	tiers, items, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Board{Lanes: ranking.Lanes(tiers, items)}, nil
}

// Check verifies the ordering invariants against the stored data.
func (s *Store) Check(ctx context.Context) (ranking.Report, error) {
	tiers, items, err := s.snapshot(ctx)
	if err != nil {
		return ranking.Report{}, err
	}
	return ranking.Check(tiers, items), nil
}

// snapshot reads tiers and items in one deferred read transaction, so both
// come from the same committed state.
func (s *Store) snapshot(ctx context.Context) ([]models.Tier, []models.Item, error) {
	tx, err := s.reader.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	tiers, err := loadTiers(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	items, err := loadItems(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	return tiers, items, nil
}
