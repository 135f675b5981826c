package repository

import (
	"context"
	"database/sql"

	"storefront-service/models"
)

type MySQLUsers struct{ db *sql.DB }

const userColumns = `id, email, name, phone, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MySQLUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, notFound(err)
}

func (r *MySQLUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	return u, notFound(err)
}

func (r *MySQLUsers) List(ctx context.Context) ([]models.User, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *MySQLUsers) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

type MySQLAddresses struct{ db *sql.DB }

const addressColumns = `id, user_id, full_name, phone, line1, line2, city, state, pincode, is_default, created_at, updated_at`

func scanAddress(row interface{ Scan(...any) error }) (*models.Address, error) {
	var a models.Address
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.Pincode, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *MySQLAddresses) ListByUser(ctx context.Context, userID int64) ([]models.Address, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = ? ORDER BY is_default DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addrs := []models.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, *a)
	}
	return addrs, rows.Err()
}

func (r *MySQLAddresses) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	a, err := scanAddress(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = ?`, id))
	return a, notFound(err)
}

func (r *MySQLAddresses) Create(ctx context.Context, a *models.Address) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO addresses (user_id, full_name, phone, line1, line2, city, state, pincode, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.Pincode, a.IsDefault, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (r *MySQLAddresses) Update(ctx context.Context, a *models.Address) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE addresses SET full_name = ?, phone = ?, line1 = ?, line2 = ?, city = ?, state = ?, pincode = ?, is_default = ?, updated_at = ?
		WHERE id = ?`,
		a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.Pincode, a.IsDefault, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLAddresses) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM addresses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLAddresses) ClearDefault(ctx context.Context, userID int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE user_id = ? AND is_default = TRUE`, userID)
	return err
}
