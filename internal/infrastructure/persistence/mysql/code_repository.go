package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"redeem-server/internal/domain/redemption_code"
)

// MySQLの重複エントリエラー
const mysqlErrDuplicateEntry = 1062

// CodeRepository MySQL実装のCodeRepository
type CodeRepository struct {
	db     *DB
	tm     *TransactionManager
	tracer trace.Tracer
}

// NewCodeRepository 新しいCodeRepositoryを作成
func NewCodeRepository(db *DB) *CodeRepository {
	return &CodeRepository{
		db:     db,
		tm:     NewTransactionManager(db),
		tracer: otel.Tracer("code-repository"),
	}
}

const codeColumns = `
	code, service_id, quantity, platform, service_type, requirements,
	status, created_date, used_date, used_by_user_id, order_id,
	expiry_days, has_refill, needs_review, review_reason
`

// rowScanner sql.Rowとsql.Rowsの共通スキャンインターフェース
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanCode 1行をCodeエンティティに変換する
func scanCode(row rowScanner) (*redemption_code.Code, error) {
	var dbCode, dbPlatform, dbServiceType, dbStatus string
	var serviceID int64
	var quantity, expiryDays int
	var requirements, usedBy, reviewReason sql.NullString
	var createdAt time.Time
	var usedAt sql.NullTime
	var orderID sql.NullInt64
	var hasRefill, needsReview bool

	err := row.Scan(
		&dbCode,
		&serviceID,
		&quantity,
		&dbPlatform,
		&dbServiceType,
		&requirements,
		&dbStatus,
		&createdAt,
		&usedAt,
		&usedBy,
		&orderID,
		&expiryDays,
		&hasRefill,
		&needsReview,
		&reviewReason,
	)
	if err != nil {
		return nil, err
	}

	platform, err := redemption_code.NewPlatform(dbPlatform)
	if err != nil {
		return nil, fmt.Errorf("invalid platform: %w", err)
	}

	serviceType, err := redemption_code.NewServiceType(dbServiceType)
	if err != nil {
		return nil, fmt.Errorf("invalid service type: %w", err)
	}

	status, err := redemption_code.NewCodeStatus(dbStatus)
	if err != nil {
		return nil, fmt.Errorf("invalid code status: %w", err)
	}

	code, err := redemption_code.NewCode(
		dbCode,
		serviceID,
		quantity,
		platform,
		serviceType,
		requirements.String,
		expiryDays,
		hasRefill,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid code row: %w", err)
	}

	code.SetStatus(status)
	code.SetCreatedAt(createdAt)

	var usedAtPtr *time.Time
	if usedAt.Valid {
		t := usedAt.Time
		usedAtPtr = &t
	}
	var orderIDPtr *int64
	if orderID.Valid {
		id := orderID.Int64
		orderIDPtr = &id
	}
	code.SetUsage(usedAtPtr, usedBy.String, orderIDPtr)
	code.SetReview(needsReview, reviewReason.String)

	return code, nil
}

// FindByCode コードで引き換えコードを取得
func (r *CodeRepository) FindByCode(ctx context.Context, code string) (*redemption_code.Code, error) {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.FindByCode")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "codes"),
	)

	query := `SELECT ` + codeColumns + ` FROM codes WHERE code = ?`

	c, err := scanCode(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "code not found")
		return nil, redemption_code.ErrCodeNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find code: %w", err)
	}

	span.SetAttributes(attribute.String("db.status", c.Status().String()))
	span.SetStatus(otelcodes.Ok, "code found")
	return c, nil
}

const insertCodeQuery = `
	INSERT INTO codes (
		code, service_id, quantity, platform, service_type, requirements,
		status, created_date, expiry_days, has_refill
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// execer sql.DBとsql.Txの共通実行インターフェース
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertCode(ctx context.Context, ex execer, code *redemption_code.Code) error {
	_, err := ex.ExecContext(ctx, insertCodeQuery,
		code.Code(),
		code.ServiceID(),
		code.Quantity(),
		code.Platform().String(),
		code.ServiceType().String(),
		code.Requirements(),
		code.Status().String(),
		code.CreatedAt(),
		code.ExpiryDays(),
		code.HasRefill(),
	)
	if err != nil {
		var mysqlErr *mysqldriver.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return redemption_code.ErrCodeAlreadyExists
		}
		return fmt.Errorf("failed to insert code: %w", err)
	}
	return nil
}

// Create 引き換えコードを作成
func (r *CodeRepository) Create(ctx context.Context, code *redemption_code.Code) error {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code.Code()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "codes"),
	)

	if err := insertCode(ctx, r.db, code); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	span.SetStatus(otelcodes.Ok, "code created")
	return nil
}

// CreateBatch 複数の引き換えコードを単一トランザクションで作成
func (r *CodeRepository) CreateBatch(ctx context.Context, codes []*redemption_code.Code) error {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.CreateBatch")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.batch_size", len(codes)),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "codes"),
	)

	err := r.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, code := range codes {
			if err := insertCode(ctx, tx, code); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	span.SetStatus(otelcodes.Ok, "codes created")
	return nil
}

// MarkUsed コードを使用済みにする
// unused → usedの遷移を単一の条件付きUPDATEとして実行するため、
// 同一コードに対する競合呼び出しのうち成功するのは1つだけ
func (r *CodeRepository) MarkUsed(ctx context.Context, code string, userID string, orderID *int64) error {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.MarkUsed")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "codes"),
	)

	query := `
		UPDATE codes
		SET status = ?, used_date = ?, used_by_user_id = ?, order_id = ?
		WHERE code = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		redemption_code.CodeStatusUsed.String(),
		time.Now(),
		userID,
		orderID,
		code,
		redemption_code.CodeStatusUnused.String(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to mark code used: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// 何も更新されなかった場合、存在しないのか既に使用済みなのかを判別する
		var status string
		err := r.db.QueryRowContext(ctx, `SELECT status FROM codes WHERE code = ?`, code).Scan(&status)
		if err == sql.ErrNoRows {
			span.SetStatus(otelcodes.Ok, "code not found")
			return redemption_code.ErrCodeNotFound
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return fmt.Errorf("failed to check code status: %w", err)
		}
		span.SetAttributes(attribute.String("db.status", status))
		span.SetStatus(otelcodes.Ok, "code not transitionable")
		if status == redemption_code.CodeStatusInvalidated.String() {
			return redemption_code.ErrCodeInvalidated
		}
		return redemption_code.ErrCodeAlreadyUsed
	}

	span.SetStatus(otelcodes.Ok, "code marked used")
	return nil
}

// SaveRedemption 引き換え履歴を保存
func (r *CodeRepository) SaveRedemption(ctx context.Context, history *redemption_code.RedemptionHistory) error {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.SaveRedemption")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", history.Code()),
		attribute.String("db.user_id", history.UserID()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "redemption_history"),
	)

	query := `
		INSERT INTO redemption_history (
			code, user_id, username, service_id, quantity, link,
			order_id, sale_order_id, redeemed_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var saleOrderID sql.NullString
	if history.SaleOrderID() != "" {
		saleOrderID = sql.NullString{String: history.SaleOrderID(), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		history.Code(),
		history.UserID(),
		history.Username(),
		history.ServiceID(),
		history.Quantity(),
		history.Link(),
		history.OrderID(),
		saleOrderID,
		history.RedeemedAt(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save redemption: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		history.SetID(id)
	}

	span.SetStatus(otelcodes.Ok, "redemption saved")
	return nil
}

// FindAll 引き換えコードの一覧を取得（作成日時の古い順）
func (r *CodeRepository) FindAll(ctx context.Context, status string) ([]*redemption_code.Code, error) {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.FindAll")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.status_filter", status),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "codes"),
	)

	query := `SELECT ` + codeColumns + ` FROM codes`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to list codes: %w", err)
	}
	defer rows.Close()

	var codes []*redemption_code.Code
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate codes: %w", err)
	}

	span.SetAttributes(attribute.Int("db.count", len(codes)))
	span.SetStatus(otelcodes.Ok, "codes listed")
	return codes, nil
}

// FindOldestUnused 指定のプラットフォーム・サービス種別で最も古い未使用コードを取得
func (r *CodeRepository) FindOldestUnused(ctx context.Context, platform redemption_code.Platform, serviceType redemption_code.ServiceType) (*redemption_code.Code, error) {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.FindOldestUnused")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.platform", platform.String()),
		attribute.String("db.service_type", serviceType.String()),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "codes"),
	)

	query := `SELECT ` + codeColumns + ` FROM codes
		WHERE platform = ? AND service_type = ? AND status = ?
		ORDER BY created_date ASC
		LIMIT 1`

	c, err := scanCode(r.db.QueryRowContext(ctx, query,
		platform.String(),
		serviceType.String(),
		redemption_code.CodeStatusUnused.String(),
	))
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "no unused code in stock")
		return nil, redemption_code.ErrCodeNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find unused code: %w", err)
	}

	span.SetAttributes(attribute.String("db.code", c.Code()))
	span.SetStatus(otelcodes.Ok, "unused code found")
	return c, nil
}

// FlagForReview コードに手動確認フラグを立てる（ステータスは変更しない）
func (r *CodeRepository) FlagForReview(ctx context.Context, code string, reason string) error {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.FlagForReview")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.review_reason", reason),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "codes"),
	)

	query := `UPDATE codes SET needs_review = TRUE, review_reason = ? WHERE code = ?`

	result, err := r.db.ExecContext(ctx, query, reason, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to flag code for review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "code not found")
		return redemption_code.ErrCodeNotFound
	}

	span.SetStatus(otelcodes.Ok, "code flagged for review")
	return nil
}

const historyColumns = `
	id, code, user_id, username, service_id, quantity, link,
	order_id, sale_order_id, redeemed_date
`

// scanHistory 1行をRedemptionHistoryエンティティに変換する
func scanHistory(row rowScanner) (*redemption_code.RedemptionHistory, error) {
	var id, serviceID int64
	var code, userID, username, link string
	var quantity int
	var orderID sql.NullInt64
	var saleOrderID sql.NullString
	var redeemedAt time.Time

	err := row.Scan(
		&id,
		&code,
		&userID,
		&username,
		&serviceID,
		&quantity,
		&link,
		&orderID,
		&saleOrderID,
		&redeemedAt,
	)
	if err != nil {
		return nil, err
	}

	var orderIDPtr *int64
	if orderID.Valid {
		v := orderID.Int64
		orderIDPtr = &v
	}

	history := redemption_code.NewRedemptionHistory(
		code, userID, username, serviceID, quantity, link, orderIDPtr, saleOrderID.String,
	)
	history.SetID(id)
	history.SetRedeemedAt(redeemedAt)

	return history, nil
}

// FindRedemptionsByUserID ユーザーの引き換え履歴を取得（新しい順）
func (r *CodeRepository) FindRedemptionsByUserID(ctx context.Context, userID string) ([]*redemption_code.RedemptionHistory, error) {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.FindRedemptionsByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "redemption_history"),
	)

	query := `SELECT ` + historyColumns + ` FROM redemption_history
		WHERE user_id = ?
		ORDER BY redeemed_date DESC`

	return r.queryHistories(ctx, span, query, userID)
}

// FindAllRedemptions 全引き換え履歴を取得（新しい順）
func (r *CodeRepository) FindAllRedemptions(ctx context.Context) ([]*redemption_code.RedemptionHistory, error) {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.FindAllRedemptions")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "redemption_history"),
	)

	query := `SELECT ` + historyColumns + ` FROM redemption_history
		ORDER BY redeemed_date DESC`

	return r.queryHistories(ctx, span, query)
}

func (r *CodeRepository) queryHistories(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]*redemption_code.RedemptionHistory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	defer rows.Close()

	var histories []*redemption_code.RedemptionHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate redemptions: %w", err)
	}

	span.SetAttributes(attribute.Int("db.count", len(histories)))
	span.SetStatus(otelcodes.Ok, "redemptions listed")
	return histories, nil
}

// FindRedemptionBySaleOrderID ECプラットフォーム側の注文IDで履歴を取得
func (r *CodeRepository) FindRedemptionBySaleOrderID(ctx context.Context, saleOrderID string) (*redemption_code.RedemptionHistory, error) {
	ctx, span := r.tracer.Start(ctx, "CodeRepository.FindRedemptionBySaleOrderID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.sale_order_id", saleOrderID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "redemption_history"),
	)

	query := `SELECT ` + historyColumns + ` FROM redemption_history
		WHERE sale_order_id = ?`

	h, err := scanHistory(r.db.QueryRowContext(ctx, query, saleOrderID))
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "redemption not found")
		return nil, redemption_code.ErrRedemptionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find redemption: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "redemption found")
	return h, nil
}
