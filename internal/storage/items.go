package storage

import (
	"context"
	"database/sql"

	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/ranking"
)

// --- Items ---

// ListItems returns all items ordered by position
func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	return loadItems(ctx, s.reader)
}

// GetItem returns an item by name
func (s *Store) GetItem(ctx context.Context, name string) (*models.Item, error) {
	return getItem(ctx, s.reader, name)
}

func getItem(ctx context.Context, q queryer, name string) (*models.Item, error) {
	row := q.QueryRowContext(ctx, `
		SELECT i.name, t.name, i.position
		FROM items i LEFT JOIN tiers t ON t.id = i.tier_id
		WHERE i.name = ?
	`, name)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ranking.NotFound("item", name)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem adds an item at the end of its tier (or of the unassigned lane)
func (s *Store) CreateItem(ctx context.Context, name string, tier *string) (*models.Item, error) {
	if err := ranking.ValidateName("name", name, s.maxNameLength); err != nil {
		return nil, err
	}

	var item *models.Item
	recomputed := noRecompute
	err := s.withTx(ctx, "create_item", func(ctx context.Context, tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE name = ?`, name).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ranking.Invalid("name", "item %q already exists", name)
		}
		tid, err := optionalTierID(ctx, tx, tier)
		if err != nil {
			return err
		}
		pos, err := nextPosition(ctx, tx)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (name, tier_id, position) VALUES (?, ?, ?)
		`, name, tid, pos); err != nil {
			return err
		}
		if recomputed, err = s.recompute(ctx, tx); err != nil {
			return err
		}
		item, err = getItem(ctx, tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.observeRecompute(recomputed)
	return item, nil
}

// AssignItem moves an item to the end of another tier, or of the unassigned
// lane when tier is nil
func (s *Store) AssignItem(ctx context.Context, name string, tier *string) (*models.Item, error) {
	var item *models.Item
	recomputed := noRecompute
	err := s.withTx(ctx, "assign_item", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := getItem(ctx, tx, name); err != nil {
			return err
		}
		tid, err := optionalTierID(ctx, tx, tier)
		if err != nil {
			return err
		}
		pos, err := nextPosition(ctx, tx)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE items SET tier_id = ?, position = ? WHERE name = ?
		`, tid, pos, name); err != nil {
			return err
		}
		if recomputed, err = s.recompute(ctx, tx); err != nil {
			return err
		}
		item, err = getItem(ctx, tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.observeRecompute(recomputed)
	return item, nil
}

// DeleteItem removes an item and closes the gap it leaves
func (s *Store) DeleteItem(ctx context.Context, name string) (int64, error) {
	var changed int64
	recomputed := noRecompute
	err := s.withTx(ctx, "delete_item", func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE name = ?`, name)
		if err != nil {
			return err
		}
		if changed, err = res.RowsAffected(); err != nil {
			return err
		}
		if changed == 0 {
			return ranking.NotFound("item", name)
		}
		recomputed, err = s.recompute(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.observeRecompute(recomputed)
	return changed, nil
}
