package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/catalog/application"
	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// CatalogHandler HTTP 处理器
type CatalogHandler struct {
	cmd   *application.CatalogCommandService
	query *application.CatalogQueryService
}

func NewCatalogHandler(cmd *application.CatalogCommandService, query *application.CatalogQueryService) *CatalogHandler {
	return &CatalogHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
	}

	admin := router.Group("/admin/products")
	{
		admin.POST("", h.CreateProduct)
		admin.PUT("/:id", h.UpdateProduct)
		admin.POST("/:id/stock", h.AdjustStock)
	}
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	SalePrice   string `json:"sale_price"`
	Stock       int    `json:"stock"`
	Category    string `json:"category"`
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid price", "")
		return
	}
	var salePrice decimal.NullDecimal
	if req.SalePrice != "" {
		sp, err := decimal.NewFromString(req.SalePrice)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid sale_price", "")
			return
		}
		salePrice = decimal.NewNullDecimal(sp)
	}

	id, err := h.cmd.CreateProduct(c.Request.Context(), application.CreateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		SalePrice:   salePrice,
		Stock:       req.Stock,
		Category:    req.Category,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to create product", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{"product_id": id})
}

// UpdateProductRequest 更新商品请求
type UpdateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	SalePrice   string `json:"sale_price"`
	Category    string `json:"category"`
	Active      bool   `json:"active"`
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid price", "")
		return
	}
	var salePrice decimal.NullDecimal
	if req.SalePrice != "" {
		sp, err := decimal.NewFromString(req.SalePrice)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid sale_price", "")
			return
		}
		salePrice = decimal.NewNullDecimal(sp)
	}

	err = h.cmd.UpdateProduct(c.Request.Context(), application.UpdateProductCommand{
		ProductID:   productID,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		SalePrice:   salePrice,
		Category:    req.Category,
		Active:      req.Active,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			response.ErrorWithStatus(c, http.StatusNotFound, "product not found", "")
			return
		}
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{"product_id": productID})
}

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	productID, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	err = h.cmd.AdjustStock(c.Request.Context(), application.AdjustStockCommand{
		ProductID: productID,
		Delta:     req.Delta,
		Reason:    req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			response.ErrorWithStatus(c, http.StatusNotFound, "product not found", "")
		case errors.Is(err, domain.ErrInsufficientStock):
			response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
		default:
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}

	response.Success(c, gin.H{"product_id": productID})
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return
	}

	product, err := h.query.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			response.ErrorWithStatus(c, http.StatusNotFound, "product not found", "")
			return
		}
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, product)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	category := c.Query("category")

	products, total, err := h.query.ListProducts(c.Request.Context(), category, page, size)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{"products": products, "total": total})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
