package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/ranking"
	"github.com/meur/tierrank/pkg/logger"
)

// --- Tiers ---

// ListTiers returns all tiers ordered by rank
func (s *Store) ListTiers(ctx context.Context) ([]models.Tier, error) {
	return loadTiers(ctx, s.reader)
}

// GetTier returns a tier by name
func (s *Store) GetTier(ctx context.Context, name string) (*models.Tier, error) {
	var t models.Tier
	err := s.reader.QueryRowContext(ctx, `
		SELECT id, name, color, rank FROM tiers WHERE name = ?
	`, name).Scan(&t.ID, &t.Name, &t.Color, &t.Rank)
	if err == sql.ErrNoRows {
		return nil, ranking.NotFound("tier", name)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTier creates a new tier ranked after every existing tier
func (s *Store) CreateTier(ctx context.Context, name, color string) (*models.Tier, error) {
	if err := ranking.ValidateName("name", name, s.maxNameLength); err != nil {
		return nil, err
	}
	if err := ranking.ValidateColor(color); err != nil {
		return nil, err
	}

	tier := &models.Tier{ID: uuid.New().String(), Name: name, Color: color}
	err := s.withTx(ctx, "create_tier", func(ctx context.Context, tx *sql.Tx) error {
		if err := s.ensureTierNameFree(ctx, tx, name); err != nil {
			return err
		}
		tiers, err := loadTiers(ctx, tx)
		if err != nil {
			return fmt.Errorf("next rank: %w", err)
		}
		tier.Rank = ranking.NextRank(tiers)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tiers (id, name, color, rank) VALUES (?, ?, ?, ?)
		`, tier.ID, tier.Name, tier.Color, tier.Rank)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "tier created", logger.String("tier", name), logger.Int("rank", tier.Rank))
	return tier, nil
}

// UpdateTier renames or recolors a tier. Rank and item positions are untouched.
func (s *Store) UpdateTier(ctx context.Context, name, newName, newColor string) (int64, error) {
	if err := ranking.ValidateName("name", newName, s.maxNameLength); err != nil {
		return 0, err
	}
	if err := ranking.ValidateColor(newColor); err != nil {
		return 0, err
	}

	var changed int64
	err := s.withTx(ctx, "update_tier", func(ctx context.Context, tx *sql.Tx) error {
		id, err := tierID(ctx, tx, name)
		if err != nil {
			return err
		}
		if newName != name {
			if err := s.ensureTierNameFree(ctx, tx, newName); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `UPDATE tiers SET name = ?, color = ? WHERE id = ?`, newName, newColor, id)
		if err != nil {
			return err
		}
		changed, err = res.RowsAffected()
		return err
	})
	return changed, err
}

// DeleteTier removes a tier. Items still referencing it either block the
// delete (reject policy) or are detached to the end of the unassigned lane
// (detach policy). Remaining ranks are not renumbered.
func (s *Store) DeleteTier(ctx context.Context, name string) (int64, error) {
	var changed int64
	recomputed := noRecompute
	err := s.withTx(ctx, "delete_tier", func(ctx context.Context, tx *sql.Tx) error {
		id, err := tierID(ctx, tx, name)
		if err != nil {
			return err
		}

		var inUse int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE tier_id = ?`, id).Scan(&inUse); err != nil {
			return err
		}
		if inUse > 0 {
			if s.deletePolicy != ranking.DeleteDetach {
				return ranking.Conflict("tier", name, fmt.Sprintf("still referenced by %d items", inUse))
			}
			if err := detachItems(ctx, tx, id); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM tiers WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if changed, err = res.RowsAffected(); err != nil {
			return err
		}
		if inUse > 0 {
			recomputed, err = s.recompute(ctx, tx)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	s.observeRecompute(recomputed)
	return changed, nil
}

// detachItems moves every item of a tier into the unassigned lane. Shifting
// their positions past the current maximum keeps them unique and keeps their
// relative order, so the following recompute appends them after the
// existing unassigned items.
func detachItems(ctx context.Context, tx *sql.Tx, id string) error {
	offset, err := nextPosition(ctx, tx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE items SET tier_id = NULL, position = position + ? WHERE tier_id = ?
	`, offset, id)
	return err
}

// MoveTier swaps a tier's rank with its neighbour above (up) or below (down)
// and recomputes positions. It returns false without error when the tier
// already sits at that boundary.
func (s *Store) MoveTier(ctx context.Context, name string, dir models.Direction) (bool, error) {
	moved := false
	recomputed := noRecompute
	err := s.withTx(ctx, "move_tier", func(ctx context.Context, tx *sql.Tx) error {
		tiers, err := loadTiers(ctx, tx)
		if err != nil {
			return err
		}
		target, neighbour, ok, err := ranking.Adjacent(tiers, name, dir)
		if err != nil || !ok {
			return err
		}

		// ranks are UNIQUE and SQLite checks each row as it is written, so
		// the target parks on the sentinel while the neighbour takes its rank.
		steps := []struct {
			id   string
			rank int
		}{
			{target.ID, ranking.SwapSentinel},
			{neighbour.ID, target.Rank},
			{target.ID, neighbour.Rank},
		}
		for _, st := range steps {
			if _, err := tx.ExecContext(ctx, `UPDATE tiers SET rank = ? WHERE id = ?`, st.rank, st.id); err != nil {
				return fmt.Errorf("swap ranks of %q and %q: %w", target.Name, neighbour.Name, err)
			}
		}

		if recomputed, err = s.recompute(ctx, tx); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	s.observeRecompute(recomputed)
	if moved {
		s.log.Info(ctx, "tier moved", logger.String("tier", name), logger.String("direction", string(dir)))
	}
	return moved, nil
}

func (s *Store) ensureTierNameFree(ctx context.Context, q queryer, name string) error {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tiers WHERE name = ?`, name).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ranking.Invalid("name", "tier %q already exists", name)
	}
	return nil
}
