package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/ecommerce/internal/cart/application"
	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// CartHandler HTTP 处理器
type CartHandler struct {
	cmd   *application.CartCommandService
	query *application.CartQueryService
}

func NewCartHandler(cmd *application.CartCommandService, query *application.CartQueryService) *CartHandler {
	return &CartHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/users/:user_id/cart")
	{
		cart.GET("", h.GetCart)
		cart.GET("/count", h.GetItemCount)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:product_id", h.UpdateItemQuantity)
		cart.DELETE("/items/:product_id", h.RemoveItem)
		cart.DELETE("", h.ClearCart)
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}

	cart, err := h.query.GetCart(c.Request.Context(), userID)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{
		"cart":       cart,
		"total":      cart.Total(),
		"item_count": cart.ItemCount(),
	})
}

func (h *CartHandler) GetItemCount(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}

	count, err := h.query.GetCartItemCount(c.Request.Context(), userID)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{"item_count": count})
}

// AddItemRequest 加购请求
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

func (h *CartHandler) AddItem(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	err = h.cmd.AddItem(c.Request.Context(), application.AddItemCommand{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, catalogdomain.ErrProductNotFound):
			response.ErrorWithStatus(c, http.StatusNotFound, "product not found", "")
		case errors.Is(err, catalogdomain.ErrProductInactive):
			response.ErrorWithStatus(c, http.StatusBadRequest, "product is not active", "")
		case errors.Is(err, domain.ErrInvalidQuantity):
			response.ErrorWithStatus(c, http.StatusBadRequest, "quantity must be positive", "")
		default:
			logging.Error(c.Request.Context(), "Failed to add cart item", "user_id", userID, "error", err)
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}

	response.Success(c, gin.H{"product_id": req.ProductID})
}

// UpdateItemQuantityRequest 修改数量请求
type UpdateItemQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateItemQuantity(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}
	productID, err := parseID(c.Param("product_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return
	}

	var req UpdateItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	err = h.cmd.UpdateItemQuantity(c.Request.Context(), application.UpdateItemQuantityCommand{
		UserID:    userID,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{"product_id": productID})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}
	productID, err := parseID(c.Param("product_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return
	}

	err = h.cmd.RemoveItem(c.Request.Context(), application.RemoveItemCommand{
		UserID:    userID,
		ProductID: productID,
	})
	if err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{"product_id": productID})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}

	if err := h.cmd.ClearCart(c.Request.Context(), application.ClearCartCommand{UserID: userID}); err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{"user_id": userID})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
