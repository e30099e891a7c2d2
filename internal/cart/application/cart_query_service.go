package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/cart/domain"
)

// CartQueryService 购物车查询服务
type CartQueryService struct {
	repo domain.CartRepository
}

// NewCartQueryService 创建购物车查询服务实例
func NewCartQueryService(repo domain.CartRepository) *CartQueryService {
	return &CartQueryService{repo: repo}
}

// GetCart 根据用户ID获取购物车，不存在时返回未落库的空车
func (s *CartQueryService) GetCart(ctx context.Context, userID uint) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUserID(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return &domain.Cart{UserID: userID, Status: domain.CartStatusActive}, nil
	}
	return cart, err
}

// GetCartTotal 获取购物车总金额
func (s *CartQueryService) GetCartTotal(ctx context.Context, userID uint) (decimal.Decimal, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Total(), nil
}

// GetCartItemCount 获取购物车商品件数合计
func (s *CartQueryService) GetCartItemCount(ctx context.Context, userID uint) (int, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}
