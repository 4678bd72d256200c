package pgstorage

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

var couponColumns = []string{
	"id", "item_id", "code", "description", "discount_amount", "is_percentage",
	"status", "valid_from", "valid_until", "created_at",
}

func scanCoupon(row rowScanner) (*entity.Coupon, error) {
	var (
		c      entity.Coupon
		status string
	)

	err := row.Scan(
		&c.ID, &c.ItemID, &c.Code, &c.Description, &c.DiscountAmount, &c.IsPercentage,
		&status, &c.ValidFrom, &c.ValidUntil, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if c.Status, err = entity.ParseCouponStatus(status); err != nil {
		return nil, err
	}

	return &c, nil
}

func collectCoupons(rows pgx.Rows) ([]entity.Coupon, error) {
	defer rows.Close()

	coupons := make([]entity.Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", classify(err))
		}
		coupons = append(coupons, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupons: %w", classify(err))
	}

	return coupons, nil
}

func (s *Storage) CreateCoupon(ctx context.Context, c *entity.Coupon) error {
	qb := s.builder.
		Insert(couponsTable).
		Columns(couponColumns...).
		Values(
			c.ID, c.ItemID, c.Code, c.Description, c.DiscountAmount, c.IsPercentage,
			c.Status.String(), c.ValidFrom, c.ValidUntil, c.CreatedAt,
		)

	if _, err := s.exec(ctx, qb); err != nil {
		return fmt.Errorf("create coupon: %w", err)
	}

	return nil
}

func (s *Storage) GetCoupon(ctx context.Context, id uuid.UUID) (*entity.Coupon, error) {
	row, err := s.queryRow(ctx, s.builder.
		Select(couponColumns...).
		From(couponsTable).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	c, err := scanCoupon(row)
	if err != nil {
		return nil, fmt.Errorf("get coupon %s: %w", id, classify(err))
	}

	return c, nil
}

func (s *Storage) ListCouponsByItem(ctx context.Context, itemID uuid.UUID) ([]entity.Coupon, error) {
	rows, err := s.query(ctx, s.builder.
		Select(couponColumns...).
		From(couponsTable).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("created_at DESC", "id"))
	if err != nil {
		return nil, fmt.Errorf("list item coupons: %w", err)
	}

	return collectCoupons(rows)
}

func (s *Storage) ListCouponsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Coupon, error) {
	rows, err := s.query(ctx, listUserCouponsQuery(s.builder, userID))
	if err != nil {
		return nil, fmt.Errorf("list user coupons: %w", err)
	}

	return collectCoupons(rows)
}

func listUserCouponsQuery(b squirrel.StatementBuilderType, userID uuid.UUID) squirrel.SelectBuilder {
	return b.Select(prefixed("c", couponColumns)...).
		From(couponsTable+" c").
		Join(itemsTable+" i ON i.id = c.item_id").
		Where(squirrel.Eq{"i.user_id": userID}).
		OrderBy("c.created_at DESC", "c.id")
}

func (s *Storage) UpdateCoupon(ctx context.Context, c *entity.Coupon) error {
	qb := s.builder.
		Update(couponsTable).
		Set("code", c.Code).
		Set("description", c.Description).
		Set("discount_amount", c.DiscountAmount).
		Set("is_percentage", c.IsPercentage).
		Set("status", c.Status.String()).
		Set("valid_until", c.ValidUntil).
		Where(squirrel.Eq{"id": c.ID})

	tag, err := s.exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}

	return expectAffected(tag, "coupon "+c.ID.String())
}

func (s *Storage) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	tag, err := s.exec(ctx, s.builder.Delete(couponsTable).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}

	return expectAffected(tag, "coupon "+id.String())
}
