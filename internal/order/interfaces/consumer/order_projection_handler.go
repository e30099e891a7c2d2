package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
)

type OrderProjectionHandler struct {
	projector *application.OrderProjectionService
	logger    *slog.Logger
}

func NewOrderProjectionHandler(projector *application.OrderProjectionService, logger *slog.Logger) *OrderProjectionHandler {
	return &OrderProjectionHandler{projector: projector, logger: logger}
}

func (h *OrderProjectionHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case domain.OrderPlacedEventType,
		domain.OrderStatusChangedEventType,
		domain.OrderCancelledEventType:
		var payload struct {
			OrderNo string `json:"order_no"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal order event", "error", err)
			return err
		}
		if payload.OrderNo == "" {
			return nil
		}
		return h.projector.Refresh(ctx, payload.OrderNo)
	default:
		h.logger.WarnContext(ctx, "unknown order event topic", "topic", msg.Topic)
		return nil
	}
}
