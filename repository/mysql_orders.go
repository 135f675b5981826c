package repository

import (
	"context"
	"database/sql"

	"storefront-service/models"
)

type MySQLOrders struct{ db *sql.DB }

const orderColumns = `id, order_number, user_id, address_id, subtotal, tax, shipping_cost, discount, total, ` +
	`coupon_code, status, payment_status, payment_method, razorpay_order_id, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.AddressID, &o.Subtotal, &o.Tax, &o.ShippingCost,
		&o.Discount, &o.Total, &o.CouponCode, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.RazorpayOrderID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Items = []models.OrderItem{}
	return &o, nil
}

func (r *MySQLOrders) Create(ctx context.Context, o *models.Order) error {
	q := conn(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO orders (order_number, user_id, address_id, subtotal, tax, shipping_cost, discount, total,
		coupon_code, status, payment_status, payment_method, razorpay_order_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderNumber, o.UserID, o.AddressID, o.Subtotal, o.Tax, o.ShippingCost, o.Discount, o.Total,
		o.CouponCode, o.Status, o.PaymentStatus, o.PaymentMethod, o.RazorpayOrderID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		res, err := q.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, price, subtotal) VALUES (?, ?, ?, ?, ?, ?)`,
			it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.Price, it.Subtotal)
		if err != nil {
			return err
		}
		if it.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}

func (r *MySQLOrders) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	byID := map[int64]*models.Order{o.ID: o}
	if err := r.loadItems(ctx, byID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrders) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (r *MySQLOrders) List(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
}

func (r *MySQLOrders) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	byID := make(map[int64]*models.Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, byID); err != nil {
		return nil, err
	}

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *MySQLOrders) loadItems(ctx context.Context, byID map[int64]*models.Order) error {
	if len(byID) == 0 {
		return nil
	}
	args := make([]any, 0, len(byID))
	placeholders := make([]byte, 0, 2*len(byID))
	for id := range byID {
		if len(args) > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, price, subtotal
		FROM order_items WHERE order_id IN (`+string(placeholders)+`) ORDER BY id`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price, &it.Subtotal); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *MySQLOrders) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus, payment models.PaymentStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE orders SET status = ?, payment_status = ?, updated_at = NOW() WHERE id = ?`, status, payment, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
