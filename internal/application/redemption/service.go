package redemption

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"redeem-server/internal/domain/fulfillment"
	"redeem-server/internal/domain/redemption_code"
	"redeem-server/internal/domain/service"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"
)

// LinkRejectedError 配送先リンクが受け付けられなかったことを表す
type LinkRejectedError struct {
	Reason string
}

// Error エラーメッセージを返す
func (e *LinkRejectedError) Error() string {
	return e.Reason
}

// webhookActor Webhook経由の配送で履歴に記録されるユーザーID
const webhookActor = "webhook"

// pendingLink リンク未指定の配送で履歴に記録されるプレースホルダ
const pendingLink = "pending"

// normalizeCode 入力コードを保存形式（大文字）に正規化する
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// RedemptionApplicationService コード引き換えアプリケーションサービス
// 発注とコード確定の順序を一元管理する。usedへの遷移はMarkUsedの
// 条件付きUPDATEが唯一の直列化点であり、補償トランザクションは行わない
type RedemptionApplicationService struct {
	codeRepo      redemption_code.CodeRepository
	panelClient   fulfillment.Client
	linkValidator *service.LinkValidator
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer
	retryDelay    time.Duration
}

// NewRedemptionApplicationService 新しいRedemptionApplicationServiceを作成
func NewRedemptionApplicationService(
	codeRepo redemption_code.CodeRepository,
	panelClient fulfillment.Client,
	linkValidator *service.LinkValidator,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *RedemptionApplicationService {
	return &RedemptionApplicationService{
		codeRepo:      codeRepo,
		panelClient:   panelClient,
		linkValidator: linkValidator,
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("redemption-service"),
		retryDelay:    500 * time.Millisecond,
	}
}

// Validate コードの引き換え可否を検証する。ストアは変更しない
func (s *RedemptionApplicationService) Validate(ctx context.Context, req *ValidateCodeRequest) (*ValidateCodeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "RedemptionApplicationService.Validate")
	defer span.End()

	span.SetAttributes(attribute.String("code", req.Code))

	code, err := s.codeRepo.FindByCode(ctx, normalizeCode(req.Code))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := code.ValidationError(time.Now()); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "code is redeemable")
	return &ValidateCodeResponse{
		Code:         code.Code(),
		Platform:     code.Platform().String(),
		ServiceType:  code.ServiceType().String(),
		Quantity:     code.Quantity(),
		Requirements: code.Requirements(),
		HasRefill:    code.HasRefill(),
		ExpiresAt:    code.ExpiresAt(),
	}, nil
}

// placeOrder パネルに発注する。一時エラーの場合のみ短い待機を挟んで1回だけ再試行する
func (s *RedemptionApplicationService) placeOrder(ctx context.Context, serviceID int64, link string, quantity int) (int64, error) {
	orderID, err := s.panelClient.CreateOrder(ctx, serviceID, link, quantity)
	if err != nil && fulfillment.IsTransient(err) {
		s.logger.Warn(ctx, "Transient order failure, retrying once", map[string]interface{}{
			"service_id": serviceID,
			"error":      err.Error(),
		})
		time.Sleep(s.retryDelay)
		orderID, err = s.panelClient.CreateOrder(ctx, serviceID, link, quantity)
	}
	return orderID, err
}

// finalize 発注済みの注文に対してコードを確定し、履歴を残す
// MarkUsedの失敗は発注と引き換え状態の不整合を意味するため、手動調整用に記録する
// 履歴の保存失敗は確定済みの引き換えを巻き戻さない
func (s *RedemptionApplicationService) finalize(ctx context.Context, code *redemption_code.Code, actor string, orderID *int64, history *redemption_code.RedemptionHistory) error {
	if err := s.codeRepo.MarkUsed(ctx, code.Code(), actor, orderID); err != nil {
		if orderID != nil {
			s.logger.Error(ctx, "Order placed but code could not be marked used, manual reconciliation required", err, map[string]interface{}{
				"code":     code.Code(),
				"order_id": *orderID,
				"actor":    actor,
			})
			s.metrics.RecordReconciliation(ctx, code.Code(), *orderID)
		}
		return err
	}

	if err := s.codeRepo.SaveRedemption(ctx, history); err != nil {
		// コードは確定済みのため、履歴の欠落はエラーとして扱わない
		s.logger.Error(ctx, "Code marked used but history could not be saved", err, map[string]interface{}{
			"code":  code.Code(),
			"actor": actor,
		})
		s.metrics.RecordError(ctx, "redemption_history_save_failed")
	}

	return nil
}

// Redeem コードを引き換える
// 検証 → リンク分類 → 発注 → コード確定 → 履歴保存の順で進む
func (s *RedemptionApplicationService) Redeem(ctx context.Context, req *RedeemRequest) (*RedeemResponse, error) {
	ctx, span := s.tracer.Start(ctx, "RedemptionApplicationService.Redeem")
	defer span.End()

	span.SetAttributes(
		attribute.String("code", req.Code),
		attribute.String("user_id", req.UserID),
	)

	s.logger.Info(ctx, "Redeeming code", map[string]interface{}{
		"code":    req.Code,
		"user_id": req.UserID,
	})

	code, err := s.codeRepo.FindByCode(ctx, normalizeCode(req.Code))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordRedemption(ctx, "unknown", "unknown", "not_found")
		return nil, err
	}

	platform := code.Platform().String()
	serviceType := code.ServiceType().String()

	if err := code.ValidationError(time.Now()); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordRedemption(ctx, platform, serviceType, "not_redeemable")
		return nil, err
	}

	link := strings.TrimSpace(req.Link)
	classification := s.linkValidator.Classify(code.Platform(), code.ServiceType(), link)
	if !classification.Accepted {
		err := &LinkRejectedError{Reason: classification.Message}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordRedemption(ctx, platform, serviceType, "invalid_link")
		return nil, err
	}

	// 発注が先、コード確定は後。逆順だと発注失敗でコードが浪費される
	orderID, err := s.placeOrder(ctx, code.ServiceID(), link, code.Quantity())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to place order", err, map[string]interface{}{
			"code":       req.Code,
			"service_id": code.ServiceID(),
		})
		s.metrics.RecordRedemption(ctx, platform, serviceType, "order_failed")
		return nil, err
	}
	s.metrics.RecordOrderPlaced(ctx, platform, serviceType)

	history := redemption_code.NewRedemptionHistory(
		code.Code(), req.UserID, req.Username,
		code.ServiceID(), code.Quantity(), link, &orderID, "",
	)
	if err := s.finalize(ctx, code, req.UserID, &orderID, history); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordRedemption(ctx, platform, serviceType, "race_lost")
		return nil, err
	}

	s.metrics.RecordRedemption(ctx, platform, serviceType, "success")
	span.SetAttributes(attribute.Int64("order_id", orderID))
	span.SetStatus(otelcodes.Ok, "code redeemed")

	s.logger.Info(ctx, "Code redeemed successfully", map[string]interface{}{
		"code":     req.Code,
		"user_id":  req.UserID,
		"order_id": orderID,
	})

	return &RedeemResponse{
		Code:        code.Code(),
		Platform:    platform,
		ServiceType: serviceType,
		Quantity:    code.Quantity(),
		Link:        link,
		OrderID:     orderID,
		RedeemedAt:  history.RedeemedAt(),
	}, nil
}

// Deliver Webhook経由でコードを配送する
// リンクが指定されている場合は発注まで行い、未指定の場合はコードの確保のみ行う
func (s *RedemptionApplicationService) Deliver(ctx context.Context, req *DeliverRequest) (*DeliverResponse, error) {
	ctx, span := s.tracer.Start(ctx, "RedemptionApplicationService.Deliver")
	defer span.End()

	span.SetAttributes(
		attribute.String("code", req.Code),
		attribute.String("sale_order_id", req.SaleOrderID),
	)

	code, err := s.codeRepo.FindByCode(ctx, req.Code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	link := strings.TrimSpace(req.Link)

	var orderID *int64
	if link != "" {
		id, err := s.placeOrder(ctx, code.ServiceID(), link, code.Quantity())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			s.logger.Error(ctx, "Failed to place webhook order", err, map[string]interface{}{
				"code":          req.Code,
				"sale_order_id": req.SaleOrderID,
			})
			return nil, err
		}
		orderID = &id
		s.metrics.RecordOrderPlaced(ctx, code.Platform().String(), code.ServiceType().String())
	} else {
		link = pendingLink
	}

	history := redemption_code.NewRedemptionHistory(
		code.Code(), webhookActor, webhookActor,
		code.ServiceID(), code.Quantity(), link, orderID, req.SaleOrderID,
	)
	if err := s.finalize(ctx, code, webhookActor, orderID, history); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "code delivered")
	return &DeliverResponse{
		Code:       code.Code(),
		OrderID:    orderID,
		RedeemedAt: history.RedeemedAt(),
	}, nil
}

// コード生成に使用する文字集合（大文字英数字）
const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateCode XXXX-XXXX-XXXX-XXXX形式のランダムコードを生成
func generateCode() (string, error) {
	groups := make([]string, 4)
	for g := range groups {
		chars := make([]byte, 4)
		for i := range chars {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
			if err != nil {
				return "", fmt.Errorf("failed to generate random code: %w", err)
			}
			chars[i] = codeCharset[n.Int64()]
		}
		groups[g] = string(chars)
	}
	return strings.Join(groups, "-"), nil
}

// ProvisionCodes 引き換えコードを一括発行する（全件まとめてコミット）
func (s *RedemptionApplicationService) ProvisionCodes(ctx context.Context, req *ProvisionCodesRequest) (*ProvisionCodesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "RedemptionApplicationService.ProvisionCodes")
	defer span.End()

	span.SetAttributes(
		attribute.Int("count", req.Count),
		attribute.String("platform", req.Platform),
		attribute.String("service_type", req.ServiceType),
	)

	if req.Count <= 0 || req.Count > 1000 {
		err := fmt.Errorf("count must be between 1 and 1000")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	platform, err := redemption_code.NewPlatform(req.Platform)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	serviceType, err := redemption_code.NewServiceType(req.ServiceType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	expiryDays := req.ExpiryDays
	if expiryDays <= 0 {
		expiryDays = 30
	}

	prefix := strings.ToUpper(strings.TrimSpace(req.Prefix))

	codes := make([]*redemption_code.Code, 0, req.Count)
	values := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		value, err := generateCode()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
		if prefix != "" {
			value = prefix + "-" + value
		}

		code, err := redemption_code.NewCode(
			value, req.ServiceID, req.Quantity,
			platform, serviceType, req.Requirements,
			expiryDays, req.HasRefill,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}

		codes = append(codes, code)
		values = append(values, value)
	}

	if err := s.codeRepo.CreateBatch(ctx, codes); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to provision codes", err, map[string]interface{}{
			"count": req.Count,
		})
		return nil, err
	}

	s.logger.Info(ctx, "Codes provisioned", map[string]interface{}{
		"count":        len(values),
		"platform":     platform.String(),
		"service_type": serviceType.String(),
	})

	span.SetStatus(otelcodes.Ok, "codes provisioned")
	return &ProvisionCodesResponse{Codes: values}, nil
}
