package application

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/pkg/logging"
)

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Name        string
	Description string
	Price       decimal.Decimal
	SalePrice   decimal.NullDecimal
	Stock       int
	Category    string
}

// UpdateProductCommand 更新商品命令
type UpdateProductCommand struct {
	ProductID   uint
	Name        string
	Description string
	Price       decimal.Decimal
	SalePrice   decimal.NullDecimal
	Category    string
	Active      bool
}

// AdjustStockCommand 库存调整命令
// Delta 为正表示补货，为负表示人工扣减
type AdjustStockCommand struct {
	ProductID uint
	Delta     int
	Reason    string
}

// CatalogCommandService 目录命令服务
type CatalogCommandService struct {
	repo      domain.ProductRepository
	publisher domain.EventPublisher
}

// NewCatalogCommandService 创建目录命令服务实例
func NewCatalogCommandService(repo domain.ProductRepository, publisher domain.EventPublisher) *CatalogCommandService {
	return &CatalogCommandService{repo: repo, publisher: publisher}
}

// CreateProduct 创建商品
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (uint, error) {
	product := &domain.Product{
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		SalePrice:   cmd.SalePrice,
		Stock:       cmd.Stock,
		Category:    cmd.Category,
		Active:      true,
	}
	if err := s.repo.Save(ctx, product); err != nil {
		logging.Error(ctx, "Failed to create product", "name", cmd.Name, "error", err)
		return 0, err
	}

	if s.publisher != nil {
		event := domain.ProductCreatedEvent{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price.String(),
			Stock:     product.Stock,
			Timestamp: time.Now(),
		}
		_ = s.publisher.Publish(ctx, domain.ProductCreatedEventType, product.Name, event)
	}

	return product.ID, nil
}

// UpdateProduct 更新商品信息（不含库存）
func (s *CatalogCommandService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) error {
	product, err := s.repo.GetByID(ctx, cmd.ProductID)
	if err != nil {
		return err
	}

	product.Name = cmd.Name
	product.Description = cmd.Description
	product.Price = cmd.Price
	product.SalePrice = cmd.SalePrice
	product.Category = cmd.Category
	product.Active = cmd.Active

	if err := s.repo.Save(ctx, product); err != nil {
		logging.Error(ctx, "Failed to update product", "product_id", cmd.ProductID, "error", err)
		return err
	}

	if s.publisher != nil {
		event := domain.ProductUpdatedEvent{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price.String(),
			Active:    product.Active,
			Timestamp: time.Now(),
		}
		_ = s.publisher.Publish(ctx, domain.ProductUpdatedEventType, product.Name, event)
	}

	return nil
}

// AdjustStock 人工调整库存
// 扣减使用与下单相同的守卫条件，永远不会把库存调成负数
func (s *CatalogCommandService) AdjustStock(ctx context.Context, cmd AdjustStockCommand) error {
	if cmd.Delta == 0 {
		return domain.ErrInvalidQuantity
	}

	var err error
	if cmd.Delta > 0 {
		err = s.repo.IncrementStock(ctx, cmd.ProductID, cmd.Delta)
	} else {
		err = s.repo.DecrementStock(ctx, cmd.ProductID, -cmd.Delta)
	}
	if err != nil {
		logging.Error(ctx, "Failed to adjust stock",
			"product_id", cmd.ProductID,
			"delta", cmd.Delta,
			"error", err,
		)
		return err
	}

	logging.Info(ctx, "Stock adjusted",
		"product_id", cmd.ProductID,
		"delta", cmd.Delta,
		"reason", cmd.Reason,
	)

	if s.publisher != nil {
		event := domain.ProductStockChangedEvent{
			ProductID: cmd.ProductID,
			Delta:     cmd.Delta,
			Reason:    cmd.Reason,
			Timestamp: time.Now(),
		}
		_ = s.publisher.Publish(ctx, domain.ProductStockChangedEventType, strconv.FormatUint(uint64(cmd.ProductID), 10), event)
	}

	return nil
}
