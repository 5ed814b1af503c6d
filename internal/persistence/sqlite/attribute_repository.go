package sqlite

import (
	"context"
	"sort"
	"time"

	"github.com/example/campus-portal/internal/persistence"
)

// AttributeRepository implements persistence.AttributeRepository using SQLite.
type AttributeRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewAttributeRepository creates a new SQLite attribute repository.
func NewAttributeRepository(pool *ConnectionPool) *AttributeRepository {
	return &AttributeRepository{pool: pool, helper: NewQueryHelper(pool)}
}

type attributeRow struct {
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Name       string    `db:"name"`
	Value      string    `db:"value"`
	UpdatedAt  timestamp `db:"updated_at"`
}

// ListAttributes returns an entity's attributes ordered by name.
func (r *AttributeRepository) ListAttributes(ctx context.Context, entityType, entityID string) ([]persistence.Attribute, error) {
	var rows []attributeRow
	err := r.helper.Select(ctx, &rows, `
		SELECT entity_type, entity_id, name, value, updated_at
		FROM attributes
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY name`, entityType, entityID)
	if err != nil {
		return nil, err
	}
	attributes := make([]persistence.Attribute, 0, len(rows))
	for _, row := range rows {
		attributes = append(attributes, persistence.Attribute{
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			Name:       row.Name,
			Value:      row.Value,
			UpdatedAt:  row.UpdatedAt.Time,
		})
	}
	return attributes, nil
}

// SetAttributes upserts the given values in one transaction. Empty values delete.
func (r *AttributeRepository) SetAttributes(ctx context.Context, entityType, entityID string, values map[string]string, updatedAt time.Time) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	return r.pool.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, name := range names {
			value := values[name]
			if value == "" {
				if _, err := r.helper.Exec(ctx, `
					DELETE FROM attributes WHERE entity_type = ? AND entity_id = ? AND name = ?`,
					entityType, entityID, name); err != nil {
					return err
				}
				continue
			}
			if _, err := r.helper.Exec(ctx, `
				INSERT INTO attributes (entity_type, entity_id, name, value, updated_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (entity_type, entity_id, name) DO UPDATE SET
					value = excluded.value,
					updated_at = excluded.updated_at`,
				entityType, entityID, name, value, formatTime(updatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
}
