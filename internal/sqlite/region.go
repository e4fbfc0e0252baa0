package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
)

// ErrSetNotFound indicates the named region set doesn't exist.
var ErrSetNotFound = errors.New("region set not found")

// RegionStore persists named region sets. A set is a snapshot of a
// collection in display order; loading rebuilds the same order.
type RegionStore struct {
	db *DB
}

// NewRegionStore creates a new RegionStore
func NewRegionStore(db *DB) *RegionStore {
	return &RegionStore{db: db}
}

// SaveSet replaces the named set with the given regions. The save is
// transactional; a failed save leaves any previous version intact.
func (s *RegionStore) SaveSet(ctx context.Context, name, stack string, regions []*roi.Region) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM region_sets WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to clear previous set: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO region_sets (name, stack) VALUES (?, ?)`, name, stack); err != nil {
		return fmt.Errorf("failed to create set: %w", err)
	}

	insert := `
		INSERT INTO regions (id, set_name, idx, name, frame, x, y, width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for idx, r := range regions {
		if _, err := tx.ExecContext(ctx, insert,
			r.ID.String(), name, idx, r.Name, r.Frame,
			r.Bounds.X, r.Bounds.Y, r.Bounds.Width, r.Bounds.Height,
		); err != nil {
			return fmt.Errorf("failed to save region %d: %w", idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit set: %w", err)
	}
	return nil
}

// LoadSet returns the regions of the named set in display order.
func (s *RegionStore) LoadSet(ctx context.Context, name string) ([]*roi.Region, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM region_sets WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up set: %w", err)
	}
	if exists == 0 {
		return nil, ErrSetNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, frame, x, y, width, height
		FROM regions
		WHERE set_name = ?
		ORDER BY idx
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}
	defer rows.Close()

	var regions []*roi.Region
	for rows.Next() {
		var (
			idStr string
			r     roi.Region
		)
		if err := rows.Scan(&idStr, &r.Name, &r.Frame,
			&r.Bounds.X, &r.Bounds.Y, &r.Bounds.Width, &r.Bounds.Height); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse region id: %w", err)
		}
		r.ID = id
		regions = append(regions, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate regions: %w", err)
	}
	return regions, nil
}

// ListSets returns the names of all saved sets, newest first.
func (s *RegionStore) ListSets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM region_sets ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan set name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sets: %w", err)
	}
	return names, nil
}

// DeleteSet removes the named set and its regions.
func (s *RegionStore) DeleteSet(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM region_sets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete set: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrSetNotFound
	}
	return nil
}
