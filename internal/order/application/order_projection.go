package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
)

// OrderProjectionService 负责将订单事件投影到读缓存。
type OrderProjectionService struct {
	repo     domain.OrderRepository
	readRepo domain.OrderReadRepository
	logger   *slog.Logger
}

func NewOrderProjectionService(repo domain.OrderRepository, readRepo domain.OrderReadRepository, logger *slog.Logger) *OrderProjectionService {
	return &OrderProjectionService{
		repo:     repo,
		readRepo: readRepo,
		logger:   logger,
	}
}

// Refresh 以数据库为准回填指定订单号的读缓存。
func (s *OrderProjectionService) Refresh(ctx context.Context, orderNo string) error {
	if s.readRepo == nil || orderNo == "" {
		return nil
	}
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return s.readRepo.Delete(ctx, orderNo)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load order for projection", "order_no", orderNo, "error", err)
		return err
	}
	if err := s.readRepo.Save(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to save order cache", "order_no", orderNo, "error", err)
		return err
	}
	return nil
}
