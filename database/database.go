package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"

	"storefront-service/config"
)

var DB *sql.DB

func DSN(cfg *config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	// RowsAffected counts matched rows, so no-op updates are not reported as missing.
	mc.ClientFoundRows = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func InitDB(cfg *config.Config) error {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	DB = db
	return nil
}

func CloseDB() {
	if DB != nil {
		_ = DB.Close()
	}
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(20) NOT NULL DEFAULT '',
		role ENUM('USER','ADMIN') NOT NULL DEFAULT 'USER',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		phone VARCHAR(10) NOT NULL,
		line1 VARCHAR(255) NOT NULL,
		line2 VARCHAR(255) NOT NULL DEFAULT '',
		city VARCHAR(100) NOT NULL,
		state VARCHAR(100) NOT NULL,
		pincode CHAR(6) NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_addresses_user (user_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS brands (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL UNIQUE,
		logo_url VARCHAR(512) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bikes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		brand_id BIGINT NOT NULL,
		model VARCHAR(255) NOT NULL,
		year_from INT NOT NULL DEFAULT 0,
		year_to INT NOT NULL DEFAULT 0,
		image_url VARCHAR(512) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		FOREIGN KEY (brand_id) REFERENCES brands(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		sku VARCHAR(64) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		description TEXT,
		brand_id BIGINT NULL,
		bike_id BIGINT NULL,
		category VARCHAR(100) NOT NULL DEFAULT '',
		price DECIMAL(12,2) NOT NULL,
		sale_price DECIMAL(12,2) NULL,
		stock INT NOT NULL DEFAULT 0,
		image_url VARCHAR(512) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_products_brand (brand_id),
		INDEX idx_products_bike (bike_id)
	)`,
	`CREATE TABLE IF NOT EXISTS banners (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		image_url VARCHAR(512) NOT NULL,
		link_url VARCHAR(512) NOT NULL DEFAULT '',
		position INT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		code VARCHAR(64) NOT NULL UNIQUE,
		description VARCHAR(255) NOT NULL DEFAULT '',
		discount_type ENUM('PERCENT','FLAT') NOT NULL,
		discount_value DECIMAL(12,2) NOT NULL,
		min_order_value DECIMAL(12,2) NULL,
		max_discount DECIMAL(12,2) NULL,
		usage_limit INT NULL,
		usage_count INT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		valid_from DATETIME NOT NULL,
		valid_until DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_number VARCHAR(64) NOT NULL UNIQUE,
		user_id BIGINT NOT NULL,
		address_id BIGINT NOT NULL,
		subtotal DECIMAL(12,2) NOT NULL,
		tax DECIMAL(12,2) NOT NULL DEFAULT 0,
		shipping_cost DECIMAL(12,2) NOT NULL DEFAULT 0,
		discount DECIMAL(12,2) NOT NULL DEFAULT 0,
		total DECIMAL(12,2) NOT NULL,
		coupon_code VARCHAR(64) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		payment_status VARCHAR(20) NOT NULL,
		payment_method VARCHAR(20) NOT NULL,
		razorpay_order_id VARCHAR(64) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_orders_user_created (user_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		product_name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		subtotal DECIMAL(12,2) NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	)`,
}
