package pagestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/canvas/internal/model"
)

// SaveComponents replaces the stored library with components, in order.
func (s *Store) SaveComponents(ctx context.Context, components []*model.Component) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save components: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM components`); err != nil {
		return fmt.Errorf("save components: %w", err)
	}
	for i, c := range components {
		if err := model.ValidateComponent(c); err != nil {
			return fmt.Errorf("save components: %w", err)
		}
		data, err := model.MarshalCanonical(c)
		if err != nil {
			return fmt.Errorf("save component %q: %w", c.ID, err)
		}
		hash, err := model.ComponentHash(c)
		if err != nil {
			return fmt.Errorf("save component %q: %w", c.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO components (id, name, position, content_hash, component)
			VALUES (?, ?, ?, ?, ?)
		`, c.ID, c.Name, i, hash, string(data))
		if err != nil {
			return fmt.Errorf("save component %q: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// LoadComponents returns the stored library in saved order. A row whose
// content no longer matches its hash is rejected with a CORRUPT error.
func (s *Store) LoadComponents(ctx context.Context) ([]*model.Component, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, content_hash, component FROM components ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}
	defer rows.Close()

	components := []*model.Component{}
	for rows.Next() {
		var id, hash, data string
		if err := rows.Scan(&id, &hash, &data); err != nil {
			return nil, fmt.Errorf("load components: %w", err)
		}
		var c model.Component
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, model.NewCorrupt("loadComponents", fmt.Sprintf("component %q: %v", id, err))
		}
		got, err := model.ComponentHash(&c)
		if err != nil {
			return nil, fmt.Errorf("load component %q: %w", id, err)
		}
		if got != hash {
			return nil, model.NewCorrupt("loadComponents", fmt.Sprintf("component %q: content hash mismatch", id))
		}
		components = append(components, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}
	return components, nil
}
