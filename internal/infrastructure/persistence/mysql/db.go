package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"redeem-server/internal/infrastructure/config"

	_ "github.com/go-sql-driver/mysql"
)

// DB データベース接続とトランザクション管理を提供
type DB struct {
	*sql.DB
}

// NewDB 新しいデータベース接続を作成
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 接続プールの設定
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// 接続テスト
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate テーブルを作成する（存在しない場合のみ）
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS codes (
			code VARCHAR(64) NOT NULL,
			service_id BIGINT NOT NULL,
			quantity INT NOT NULL,
			platform VARCHAR(32) NOT NULL,
			service_type VARCHAR(32) NOT NULL,
			requirements TEXT,
			status VARCHAR(16) NOT NULL DEFAULT 'unused',
			created_date DATETIME NOT NULL,
			used_date DATETIME NULL,
			used_by_user_id VARCHAR(64) NULL,
			order_id BIGINT NULL,
			expiry_days INT NOT NULL DEFAULT 30,
			has_refill BOOLEAN NOT NULL DEFAULT FALSE,
			needs_review BOOLEAN NOT NULL DEFAULT FALSE,
			review_reason TEXT,
			PRIMARY KEY (code),
			INDEX idx_codes_status (status),
			INDEX idx_codes_stock (platform, service_type, status, created_date)
		)`,
		`CREATE TABLE IF NOT EXISTS redemption_history (
			id BIGINT AUTO_INCREMENT,
			code VARCHAR(64) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			username VARCHAR(128) NOT NULL,
			service_id BIGINT NOT NULL,
			quantity INT NOT NULL,
			link TEXT NOT NULL,
			order_id BIGINT NULL,
			sale_order_id VARCHAR(64) NULL,
			redeemed_date DATETIME NOT NULL,
			PRIMARY KEY (id),
			UNIQUE INDEX idx_history_sale_order (sale_order_id),
			INDEX idx_history_user (user_id),
			INDEX idx_history_code (code)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

// Close データベース接続を閉じる
func (db *DB) Close() error {
	return db.DB.Close()
}

// HealthCheck データベースのヘルスチェックを実行
func (db *DB) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return db.PingContext(ctx)
}
