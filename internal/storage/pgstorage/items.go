package pgstorage

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

var itemColumns = []string{
	"id", "user_id", "name", "description", "url", "image_url", "category",
	"current_price", "initial_price", "lowest_price", "highest_price",
	"is_purchased", "priority", "created_at", "updated_at",
}

func scanItem(row rowScanner) (*entity.Item, error) {
	var (
		item     entity.Item
		priority string
	)

	err := row.Scan(
		&item.ID, &item.UserID, &item.Name, &item.Description, &item.URL, &item.ImageURL, &item.Category,
		&item.CurrentPrice, &item.InitialPrice, &item.LowestPrice, &item.HighestPrice,
		&item.IsPurchased, &priority, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if item.Priority, err = entity.ParsePriority(priority); err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *Storage) CreateItem(ctx context.Context, item *entity.Item) error {
	qb := s.builder.
		Insert(itemsTable).
		Columns(itemColumns...).
		Values(
			item.ID, item.UserID, item.Name, item.Description, item.URL, item.ImageURL, item.Category,
			item.CurrentPrice, item.InitialPrice, item.LowestPrice, item.HighestPrice,
			item.IsPurchased, item.Priority.String(), item.CreatedAt, item.UpdatedAt,
		)

	if _, err := s.exec(ctx, qb); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

func (s *Storage) GetItem(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	return s.getItem(ctx, id, false)
}

func (s *Storage) GetItemForUpdate(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	return s.getItem(ctx, id, true)
}

func (s *Storage) getItem(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.Item, error) {
	row, err := s.queryRow(ctx, getItemQuery(s.builder, id, forUpdate))
	if err != nil {
		return nil, err
	}

	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, classify(err))
	}

	return item, nil
}

func getItemQuery(b squirrel.StatementBuilderType, id uuid.UUID, forUpdate bool) squirrel.SelectBuilder {
	qb := b.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		qb = qb.Suffix("FOR UPDATE")
	}
	return qb
}

func (s *Storage) ListItems(ctx context.Context, userID uuid.UUID, filter entity.ItemFilter) ([]entity.Item, error) {
	rows, err := s.query(ctx, listItemsQuery(s.builder, userID, filter))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]entity.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", classify(err))
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", classify(err))
	}

	return items, nil
}

func listItemsQuery(b squirrel.StatementBuilderType, userID uuid.UUID, filter entity.ItemFilter) squirrel.SelectBuilder {
	qb := b.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"user_id": userID})

	if filter.Category != nil {
		qb = qb.Where(squirrel.Eq{"category": *filter.Category})
	}
	if filter.Priority != nil {
		qb = qb.Where(squirrel.Eq{"priority": filter.Priority.String()})
	}
	if filter.IsPurchased != nil {
		qb = qb.Where(squirrel.Eq{"is_purchased": *filter.IsPurchased})
	}

	return qb.OrderBy("created_at DESC", "id")
}

// UpdateItem writes the owner-editable fields. Price fields are left alone.
func (s *Storage) UpdateItem(ctx context.Context, item *entity.Item) error {
	qb := s.builder.
		Update(itemsTable).
		Set("name", item.Name).
		Set("description", item.Description).
		Set("url", item.URL).
		Set("image_url", item.ImageURL).
		Set("category", item.Category).
		Set("is_purchased", item.IsPurchased).
		Set("priority", item.Priority.String()).
		Set("updated_at", item.UpdatedAt).
		Where(squirrel.Eq{"id": item.ID})

	tag, err := s.exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	return expectAffected(tag, "item "+item.ID.String())
}

// UpdateItemPrices writes current price and extrema. initial_price is immutable.
func (s *Storage) UpdateItemPrices(ctx context.Context, item *entity.Item) error {
	qb := s.builder.
		Update(itemsTable).
		Set("current_price", item.CurrentPrice).
		Set("lowest_price", item.LowestPrice).
		Set("highest_price", item.HighestPrice).
		Set("updated_at", item.UpdatedAt).
		Where(squirrel.Eq{"id": item.ID})

	tag, err := s.exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("update item prices: %w", err)
	}

	return expectAffected(tag, "item "+item.ID.String())
}

func (s *Storage) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := s.exec(ctx, s.builder.Delete(itemsTable).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	return expectAffected(tag, "item "+id.String())
}
