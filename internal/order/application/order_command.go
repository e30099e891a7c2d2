package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	cartdomain "github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/pkg/logging"
)

// PlaceOrderCommand 下单命令
type PlaceOrderCommand struct {
	UserID          uint
	ShippingAddress string
}

// UpdateStatusCommand 管理端状态更新命令
type UpdateStatusCommand struct {
	OrderID uint
	Status  domain.OrderStatus
}

// CancelOrderCommand 用户取消订单命令
type CancelOrderCommand struct {
	OrderID uint
	UserID  uint
}

// OrderCommandService 订单命令服务
// PlaceOrder 是购物车到订单的原子转换入口
type OrderCommandService struct {
	orderRepo   domain.OrderRepository
	cartRepo    cartdomain.CartRepository
	productRepo catalogdomain.ProductRepository
	userRepo    userdomain.UserRepository
	publisher   domain.EventPublisher
}

// NewOrderCommandService 创建订单命令服务实例
func NewOrderCommandService(
	orderRepo domain.OrderRepository,
	cartRepo cartdomain.CartRepository,
	productRepo catalogdomain.ProductRepository,
	userRepo userdomain.UserRepository,
	publisher domain.EventPublisher,
) *OrderCommandService {
	return &OrderCommandService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// PlaceOrder 把用户的 ACTIVE 购物车转换为订单。
// 整个转换在一个数据库事务内完成：锁定全部关联商品行、
// 校验库存、按当前生效价生成行项、重算总额、扣减库存、落库订单。
// 任何一步失败整体回滚，不会出现半个订单或半次扣减。
// 事务提交后清空购物车；清空失败只记录日志，订单依然成立。
func (s *OrderCommandService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	defer logging.LogDuration(ctx, "Order placement finished", "user_id", cmd.UserID)()

	if _, err := s.userRepo.GetByID(ctx, cmd.UserID); err != nil {
		return nil, err
	}

	// 空车先于地址校验，两者同时缺失时报空车
	cart, err := s.cartRepo.GetActiveByUserID(ctx, cmd.UserID)
	if errors.Is(err, cartdomain.ErrCartNotFound) {
		return nil, domain.ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	if strings.TrimSpace(cmd.ShippingAddress) == "" {
		return nil, domain.ErrInvalidAddress
	}

	orderNo := fmt.Sprintf("ORD-%d", idgen.GenID())
	order := domain.NewOrder(orderNo, cmd.UserID, strings.TrimSpace(cmd.ShippingAddress))

	err = s.orderRepo.Transaction(ctx, func(txCtx context.Context) error {
		// 固定加锁顺序，避免并发下单互相死锁
		items := make([]cartdomain.CartItem, len(cart.Items))
		copy(items, cart.Items)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		locked := make(map[uint]*catalogdomain.Product, len(items))
		for i := range items {
			product, err := s.productRepo.GetWithLock(txCtx, items[i].ProductID)
			if err != nil {
				return err
			}
			if !product.Active {
				return catalogdomain.ErrProductNotFound
			}
			locked[product.ID] = product
		}

		// 预检：任何一个商品库存不足则整单失败，库存与购物车保持原样
		for i := range items {
			product := locked[items[i].ProductID]
			if !product.HasStock(items[i].Quantity) {
				return &catalogdomain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   items[i].Quantity,
					Available:   product.Stock,
				}
			}
		}

		// 行项价格取下单时刻的生效价，有意不用购物车里的快照：
		// 加购与结算之间的价格漂移体现在订单上，而不是购物车上
		for i := range cart.Items {
			product := locked[cart.Items[i].ProductID]
			order.AddItem(product.ID, product.Name, cart.Items[i].Quantity, product.EffectivePrice())
		}
		order.CalculateTotal()

		for i := range items {
			if err := s.productRepo.DecrementStock(txCtx, items[i].ProductID, items[i].Quantity); err != nil {
				return err
			}
		}

		if err := s.orderRepo.Save(txCtx, order); err != nil {
			return err
		}

		if s.publisher == nil {
			return nil
		}
		event := domain.OrderPlacedEvent{
			OrderID:     order.ID,
			OrderNo:     order.OrderNo,
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount.String(),
			ItemCount:   len(order.Items),
			Timestamp:   time.Now(),
		}
		return s.publisher.PublishInTx(ctx, contextx.GetTx(txCtx), domain.OrderPlacedEventType, order.OrderNo, event)
	})
	if err != nil {
		logging.Warn(ctx, "Order placement aborted",
			"user_id", cmd.UserID,
			"cart_id", cart.ID,
			"error", err,
		)
		return nil, err
	}

	// 订单已提交，购物车清理只是善后；失败不回滚订单，记日志即可
	if err := s.retireCart(ctx, cart.ID); err != nil {
		logging.Error(ctx, "Failed to clear cart after order placement",
			"cart_id", cart.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}

	logging.Info(ctx, "Order placed",
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"total_amount", order.TotalAmount.String(),
		"items", len(order.Items),
	)

	return order, nil
}

func (s *OrderCommandService) retireCart(ctx context.Context, cartID uint) error {
	if err := s.cartRepo.ClearItems(ctx, cartID); err != nil {
		return err
	}
	return s.cartRepo.MarkConverted(ctx, cartID)
}

// UpdateStatus 管理端状态更新。
// 记录请求的目标状态而不强制流转图，调用方的授权层负责
// 限定谁可以请求哪种流转。
func (s *OrderCommandService) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) error {
	if !cmd.Status.IsValid() {
		return domain.ErrInvalidStatus
	}

	order, err := s.orderRepo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	oldStatus := order.Status
	if err := s.orderRepo.UpdateStatus(ctx, cmd.OrderID, cmd.Status); err != nil {
		return err
	}

	logging.Info(ctx, "Order status updated",
		"order_no", order.OrderNo,
		"old_status", oldStatus,
		"new_status", cmd.Status,
	)

	if s.publisher != nil {
		event := domain.OrderStatusChangedEvent{
			OrderID:   order.ID,
			OrderNo:   order.OrderNo,
			OldStatus: oldStatus,
			NewStatus: cmd.Status,
			Timestamp: time.Now(),
		}
		_ = s.publisher.Publish(ctx, domain.OrderStatusChangedEventType, order.OrderNo, event)
	}

	return nil
}

// CancelOrder 用户侧取消：仅属主本人、仅 PENDING 状态。
// 取消只改状态，不回补库存，回补由后续的售后流程处理。
func (s *OrderCommandService) CancelOrder(ctx context.Context, cmd CancelOrderCommand) error {
	order, err := s.orderRepo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if order.UserID != cmd.UserID {
		return domain.ErrNotOrderOwner
	}
	if !order.CanBeCancelledByUser() {
		return domain.ErrOrderNotCancellable
	}

	if err := s.orderRepo.UpdateStatus(ctx, cmd.OrderID, domain.OrderStatusCancelled); err != nil {
		return err
	}

	logging.Info(ctx, "Order cancelled by user",
		"order_no", order.OrderNo,
		"user_id", cmd.UserID,
	)

	if s.publisher != nil {
		event := domain.OrderCancelledEvent{
			OrderID:   order.ID,
			OrderNo:   order.OrderNo,
			UserID:    order.UserID,
			Timestamp: time.Now(),
		}
		_ = s.publisher.Publish(ctx, domain.OrderCancelledEventType, order.OrderNo, event)
	}

	return nil
}
