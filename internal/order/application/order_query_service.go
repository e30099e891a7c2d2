package application

import (
	"context"
	"time"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
)

// OrderQueryService 处理所有订单相关的查询操作（Queries）。
type OrderQueryService struct {
	repo     domain.OrderRepository
	readRepo domain.OrderReadRepository
}

// NewOrderQueryService 构造函数。readRepo 可为 nil，此时全部查询直达数据库。
func NewOrderQueryService(repo domain.OrderRepository, readRepo domain.OrderReadRepository) *OrderQueryService {
	return &OrderQueryService{repo: repo, readRepo: readRepo}
}

// GetOrder 根据订单ID获取订单详情。
func (s *OrderQueryService) GetOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// GetOrderByNo 根据订单号获取订单详情，优先走读缓存。
func (s *OrderQueryService) GetOrderByNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	if s.readRepo != nil {
		if cached, err := s.readRepo.Get(ctx, orderNo); err == nil && cached != nil {
			return cached, nil
		}
	}
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if s.readRepo != nil {
		_ = s.readRepo.Save(ctx, order)
	}
	return order, nil
}

// ListOrdersByUser 获取用户订单列表，按创建时间倒序分页。
func (s *OrderQueryService) ListOrdersByUser(ctx context.Context, userID uint, page, pageSize int) ([]*domain.Order, int64, error) {
	limit, offset := normalizePage(page, pageSize)
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListOrdersByStatus 管理端按状态筛选订单。
func (s *OrderQueryService) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus, page, pageSize int) ([]*domain.Order, int64, error) {
	if !status.IsValid() {
		return nil, 0, domain.ErrInvalidStatus
	}
	limit, offset := normalizePage(page, pageSize)
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// ListOrdersByDateRange 管理端按创建时间区间筛选订单。
func (s *OrderQueryService) ListOrdersByDateRange(ctx context.Context, start, end time.Time, page, pageSize int) ([]*domain.Order, int64, error) {
	limit, offset := normalizePage(page, pageSize)
	return s.repo.ListByDateRange(ctx, start, end, limit, offset)
}

func normalizePage(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}
