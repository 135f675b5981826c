package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"storefront-service/models"
)

type MySQLCoupons struct{ db *sql.DB }

const couponColumns = `id, code, description, discount_type, discount_value, min_order_value, max_discount, ` +
	`usage_limit, usage_count, is_active, valid_from, valid_until, created_at, updated_at`

func scanCoupon(row interface{ Scan(...any) error }) (*models.Coupon, error) {
	var (
		c          models.Coupon
		minOrder   decimal.NullDecimal
		maxDisc    decimal.NullDecimal
		usageLimit sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.Code, &c.Description, &c.DiscountType, &c.DiscountValue, &minOrder, &maxDisc,
		&usageLimit, &c.UsageCount, &c.IsActive, &c.ValidFrom, &c.ValidUntil, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if minOrder.Valid {
		c.MinOrderValue = &minOrder.Decimal
	}
	if maxDisc.Valid {
		c.MaxDiscount = &maxDisc.Decimal
	}
	if usageLimit.Valid {
		n := int(usageLimit.Int64)
		c.UsageLimit = &n
	}
	return &c, nil
}

func (r *MySQLCoupons) Create(ctx context.Context, c *models.Coupon) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO coupons (code, description, discount_type, discount_value, min_order_value, max_discount,
		usage_limit, usage_count, is_active, valid_from, valid_until, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Code, c.Description, c.DiscountType, c.DiscountValue, c.MinOrderValue, c.MaxDiscount,
		c.UsageLimit, c.UsageCount, c.IsActive, c.ValidFrom, c.ValidUntil, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *MySQLCoupons) GetByID(ctx context.Context, id int64) (*models.Coupon, error) {
	c, err := scanCoupon(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = ?`, id))
	return c, notFound(err)
}

func (r *MySQLCoupons) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	c, err := scanCoupon(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = ?`, code))
	return c, notFound(err)
}

func (r *MySQLCoupons) Update(ctx context.Context, c *models.Coupon) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE coupons SET code = ?, description = ?, discount_type = ?, discount_value = ?, min_order_value = ?,
		max_discount = ?, usage_limit = ?, is_active = ?, valid_from = ?, valid_until = ?, updated_at = ?
		WHERE id = ?`,
		c.Code, c.Description, c.DiscountType, c.DiscountValue, c.MinOrderValue,
		c.MaxDiscount, c.UsageLimit, c.IsActive, c.ValidFrom, c.ValidUntil, c.UpdatedAt, c.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLCoupons) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM coupons WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLCoupons) List(ctx context.Context) ([]models.Coupon, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := []models.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *MySQLCoupons) IncrementUsage(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE coupons SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrCouponExhausted
	}
	return nil
}
