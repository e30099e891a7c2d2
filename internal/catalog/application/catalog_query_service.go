package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
)

// CatalogQueryService 目录查询服务
type CatalogQueryService struct {
	repo domain.ProductRepository
}

// NewCatalogQueryService 创建目录查询服务实例
func NewCatalogQueryService(repo domain.ProductRepository) *CatalogQueryService {
	return &CatalogQueryService{repo: repo}
}

// GetProduct 获取商品详情
func (s *CatalogQueryService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts 分页获取商品列表
func (s *CatalogQueryService) ListProducts(ctx context.Context, category string, page, size int) ([]*domain.Product, int64, error) {
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, category, offset, size)
}
