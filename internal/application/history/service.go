package history

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"redeem-server/internal/domain/redemption_code"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"
)

// HistoryApplicationService コード・引き換え履歴の参照サービス
type HistoryApplicationService struct {
	codeRepo redemption_code.CodeRepository
	logger   *otelinfra.Logger
	tracer   trace.Tracer
}

// NewHistoryApplicationService 新しいHistoryApplicationServiceを作成
func NewHistoryApplicationService(
	codeRepo redemption_code.CodeRepository,
	logger *otelinfra.Logger,
) *HistoryApplicationService {
	return &HistoryApplicationService{
		codeRepo: codeRepo,
		logger:   logger,
		tracer:   otel.Tracer("history-service"),
	}
}

// toCodeSummary CodeエンティティをDTOに変換
func toCodeSummary(c *redemption_code.Code) CodeSummary {
	return CodeSummary{
		Code:         c.Code(),
		ServiceID:    c.ServiceID(),
		Quantity:     c.Quantity(),
		Platform:     c.Platform().String(),
		ServiceType:  c.ServiceType().String(),
		Requirements: c.Requirements(),
		Status:       c.Status().String(),
		CreatedAt:    c.CreatedAt(),
		UsedAt:       c.UsedAt(),
		UsedBy:       c.UsedBy(),
		OrderID:      c.OrderID(),
		ExpiresAt:    c.ExpiresAt(),
		HasRefill:    c.HasRefill(),
		NeedsReview:  c.NeedsReview(),
		ReviewReason: c.ReviewReason(),
	}
}

// toRedemptionSummary RedemptionHistoryエンティティをDTOに変換
func toRedemptionSummary(h *redemption_code.RedemptionHistory) RedemptionSummary {
	return RedemptionSummary{
		ID:          h.ID(),
		Code:        h.Code(),
		UserID:      h.UserID(),
		Username:    h.Username(),
		ServiceID:   h.ServiceID(),
		Quantity:    h.Quantity(),
		Link:        h.Link(),
		OrderID:     h.OrderID(),
		SaleOrderID: h.SaleOrderID(),
		RedeemedAt:  h.RedeemedAt(),
	}
}

// ListCodes コードの一覧を取得する。空のステータスは全件
func (s *HistoryApplicationService) ListCodes(ctx context.Context, req *ListCodesRequest) (*ListCodesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.ListCodes")
	defer span.End()

	span.SetAttributes(attribute.String("status", req.Status))

	if req.Status != "" {
		if _, err := redemption_code.NewCodeStatus(req.Status); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("invalid status filter: %w", err)
		}
	}

	codes, err := s.codeRepo.FindAll(ctx, req.Status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to list codes", err, nil)
		return nil, err
	}

	summaries := make([]CodeSummary, 0, len(codes))
	for _, c := range codes {
		summaries = append(summaries, toCodeSummary(c))
	}

	span.SetAttributes(attribute.Int("count", len(summaries)))
	span.SetStatus(otelcodes.Ok, "codes listed")
	return &ListCodesResponse{Codes: summaries, Total: len(summaries)}, nil
}

// ListRedemptions 全引き換え履歴を取得する（新しい順）
func (s *HistoryApplicationService) ListRedemptions(ctx context.Context) (*ListRedemptionsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.ListRedemptions")
	defer span.End()

	histories, err := s.codeRepo.FindAllRedemptions(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to list redemptions", err, nil)
		return nil, err
	}

	summaries := make([]RedemptionSummary, 0, len(histories))
	for _, h := range histories {
		summaries = append(summaries, toRedemptionSummary(h))
	}

	span.SetAttributes(attribute.Int("count", len(summaries)))
	span.SetStatus(otelcodes.Ok, "redemptions listed")
	return &ListRedemptionsResponse{Redemptions: summaries, Total: len(summaries)}, nil
}

// GetUserRedemptions ユーザーの引き換え履歴を取得する（新しい順）
func (s *HistoryApplicationService) GetUserRedemptions(ctx context.Context, req *GetUserRedemptionsRequest) (*ListRedemptionsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetUserRedemptions")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", req.UserID))

	if req.UserID == "" {
		err := fmt.Errorf("user_id is required")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	histories, err := s.codeRepo.FindRedemptionsByUserID(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get user redemptions", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		return nil, err
	}

	summaries := make([]RedemptionSummary, 0, len(histories))
	for _, h := range histories {
		summaries = append(summaries, toRedemptionSummary(h))
	}

	span.SetAttributes(attribute.Int("count", len(summaries)))
	span.SetStatus(otelcodes.Ok, "user redemptions listed")
	return &ListRedemptionsResponse{Redemptions: summaries, Total: len(summaries)}, nil
}
