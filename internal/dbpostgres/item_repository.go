package dbpostgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gocatalog/internal/common"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// QueryItems returns the window of items selected by q and the total number
// of matching rows, independent of q.Limit.
func (r *ItemRepository) QueryItems(ctx context.Context, q ItemQuery) ([]Item, int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Item{}).
		Scopes(q.scopes()...).
		Count(&count).Error
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	tx := r.db.WithContext(ctx).
		Joins("Folder").
		Scopes(q.scopes()...)
	for _, o := range q.OrderBy {
		tx = tx.Order(o.SQL())
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var items []Item
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}
	return items, count, nil
}

func (r *ItemRepository) GetItemByID(ctx context.Context, id string) (*Item, error) {
	var item Item
	err := r.db.WithContext(ctx).
		Joins("Folder").
		Where("items.id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

func (r *ItemRepository) CreateItem(ctx context.Context, item *Item) error {
	if err := r.db.WithContext(ctx).Omit("Folder").Create(item).Error; err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// UpdateItem applies a partial update; only the given columns are written.
func (r *ItemRepository) UpdateItem(ctx context.Context, id string, updates map[string]interface{}) (*Item, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).
			Model(&Item{}).
			Where("id = ?", id).
			Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("update item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
		}
	}
	return r.GetItemByID(ctx, id)
}

// DeleteItem is idempotent: deleting a missing id is not an error.
func (r *ItemRepository) DeleteItem(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Item{}).Error; err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// IncrementReaction bumps one reaction counter in a single statement.
func (r *ItemRepository) IncrementReaction(ctx context.Context, id string, kind common.ReactionKind) error {
	res := r.db.WithContext(ctx).
		Model(&Item{}).
		Where("id = ?", id).
		UpdateColumn("reactions", gorm.Expr(
			"jsonb_set(COALESCE(reactions, '{}'::jsonb), ARRAY[?]::text[], to_jsonb(COALESCE((reactions->>?)::int, 0) + 1))",
			string(kind), string(kind),
		))
	if res.Error != nil {
		return fmt.Errorf("increment reaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %s: %w", id, common.ErrNotFound)
	}
	return nil
}
