package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/pkg/logging"
)

// AddItemCommand 添加商品到购物车命令
type AddItemCommand struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// UpdateItemQuantityCommand 修改行项数量命令
// Quantity <= 0 等价于移除
type UpdateItemQuantityCommand struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// RemoveItemCommand 从购物车移除商品命令
type RemoveItemCommand struct {
	UserID    uint
	ProductID uint
}

// ClearCartCommand 清空购物车命令
type ClearCartCommand struct {
	UserID uint
}

// CartCommandService 购物车命令服务
type CartCommandService struct {
	repo        domain.CartRepository
	productRepo catalogdomain.ProductRepository
	publisher   domain.EventPublisher
}

// NewCartCommandService 创建购物车命令服务实例
func NewCartCommandService(
	repo domain.CartRepository,
	productRepo catalogdomain.ProductRepository,
	publisher domain.EventPublisher,
) *CartCommandService {
	return &CartCommandService{
		repo:        repo,
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// GetOrCreateActiveCart 返回用户的 ACTIVE 购物车，不存在则创建一个空车
func (s *CartCommandService) GetOrCreateActiveCart(ctx context.Context, userID uint) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return nil, err
	}

	cart = domain.NewActiveCart(userID)
	if err := s.repo.Save(ctx, cart); err != nil {
		// 并发首次请求会撞 active_key 唯一索引，输掉插入的一方复用赢家的购物车
		if existing, getErr := s.repo.GetActiveByUserID(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	if s.publisher != nil {
		event := domain.CartCreatedEvent{
			CartID:    cart.ID,
			UserID:    cart.UserID,
			Timestamp: time.Now(),
		}
		_ = s.publisher.Publish(ctx, domain.CartCreatedEventType, strconv.FormatUint(uint64(cart.UserID), 10), event)
	}

	return cart, nil
}

// AddItem 处理添加商品到购物车。
// 同一商品合并为一行：数量累加，价格快照刷新为商品当前生效价
// （促销价优先）。合并通过单条原子 upsert 完成，并发加购不丢增量。
func (s *CartCommandService) AddItem(ctx context.Context, cmd AddItemCommand) error {
	if cmd.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, cmd.ProductID)
	if err != nil {
		return err
	}
	if !product.Active {
		return catalogdomain.ErrProductInactive
	}

	cart, err := s.GetOrCreateActiveCart(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	price := product.EffectivePrice()
	if err := s.repo.UpsertItem(ctx, cart.ID, cmd.ProductID, cmd.Quantity, price); err != nil {
		logging.Error(ctx, "Failed to upsert cart item",
			"cart_id", cart.ID,
			"product_id", cmd.ProductID,
			"error", err,
		)
		return err
	}

	if s.publisher != nil {
		event := domain.CartItemAddedEvent{
			CartID:    cart.ID,
			UserID:    cart.UserID,
			ProductID: cmd.ProductID,
			Quantity:  cmd.Quantity,
			Price:     price.String(),
			Timestamp: time.Now(),
		}
		_ = s.publisher.Publish(ctx, domain.CartItemAddedEventType, strconv.FormatUint(uint64(cart.UserID), 10), event)
	}

	return nil
}

// UpdateItemQuantity 将行项数量设为给定值（非累加），<= 0 移除该行
func (s *CartCommandService) UpdateItemQuantity(ctx context.Context, cmd UpdateItemQuantityCommand) error {
	cart, err := s.repo.GetActiveByUserID(ctx, cmd.UserID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if cmd.Quantity <= 0 {
		return s.repo.DeleteItem(ctx, cart.ID, cmd.ProductID)
	}
	return s.repo.UpdateItemQuantity(ctx, cart.ID, cmd.ProductID, cmd.Quantity)
}

// RemoveItem 处理从购物车移除商品，商品不存在时为空操作
func (s *CartCommandService) RemoveItem(ctx context.Context, cmd RemoveItemCommand) error {
	cart, err := s.repo.GetActiveByUserID(ctx, cmd.UserID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.repo.DeleteItem(ctx, cart.ID, cmd.ProductID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := domain.CartItemRemovedEvent{
			CartID:    cart.ID,
			UserID:    cart.UserID,
			ProductID: cmd.ProductID,
			Timestamp: time.Now(),
		}
		_ = s.publisher.Publish(ctx, domain.CartItemRemovedEventType, strconv.FormatUint(uint64(cart.UserID), 10), event)
	}

	return nil
}

// ClearCart 处理清空购物车
func (s *CartCommandService) ClearCart(ctx context.Context, cmd ClearCartCommand) error {
	cart, err := s.repo.GetActiveByUserID(ctx, cmd.UserID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := domain.CartClearedEvent{
			CartID:    cart.ID,
			UserID:    cart.UserID,
			Timestamp: time.Now(),
		}
		_ = s.publisher.Publish(ctx, domain.CartClearedEventType, strconv.FormatUint(uint64(cart.UserID), 10), event)
	}

	return nil
}
