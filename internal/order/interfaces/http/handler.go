package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// OrderHandler HTTP 处理器
type OrderHandler struct {
	cmd   *application.OrderCommandService
	query *application.OrderQueryService
}

func NewOrderHandler(cmd *application.OrderCommandService, query *application.OrderQueryService) *OrderHandler {
	return &OrderHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册用户侧与管理侧路由
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/users/:user_id/orders")
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.ListUserOrders)
		orders.GET("/:order_id", h.GetOrder)
		orders.POST("/:order_id/cancel", h.CancelOrder)
	}

	admin := router.Group("/admin/orders")
	{
		admin.GET("", h.ListOrders)
		admin.GET("/no/:order_no", h.GetOrderByNo)
		admin.PUT("/:order_id/status", h.UpdateStatus)
	}
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	order, err := h.cmd.PlaceOrder(c.Request.Context(), application.PlaceOrderCommand{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		var stockErr *catalogdomain.InsufficientStockError
		switch {
		case errors.Is(err, domain.ErrInvalidAddress):
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		case errors.Is(err, domain.ErrEmptyCart):
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		case errors.Is(err, userdomain.ErrUserNotFound):
			response.ErrorWithStatus(c, http.StatusNotFound, "user not found", "")
		case errors.As(err, &stockErr):
			response.ErrorWithStatus(c, http.StatusConflict, stockErr.Error(), "")
		case errors.Is(err, catalogdomain.ErrProductNotFound):
			response.ErrorWithStatus(c, http.StatusConflict, "product no longer available", "")
		default:
			logging.Error(c.Request.Context(), "Failed to place order", "user_id", userID, "error", err)
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}

	response.Success(c, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid order id", "")
		return
	}

	order, err := h.query.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			response.ErrorWithStatus(c, http.StatusNotFound, "order not found", "")
			return
		}
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	// 属主校验走 404，避免泄露他人订单的存在
	if order.UserID != userID {
		response.ErrorWithStatus(c, http.StatusNotFound, "order not found", "")
		return
	}

	response.Success(c, order)
}

func (h *OrderHandler) ListUserOrders(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.query.ListOrdersByUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{"orders": orders, "total": total})
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid user id", "")
		return
	}
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid order id", "")
		return
	}

	err = h.cmd.CancelOrder(c.Request.Context(), application.CancelOrderCommand{
		OrderID: orderID,
		UserID:  userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			response.ErrorWithStatus(c, http.StatusNotFound, "order not found", "")
		case errors.Is(err, domain.ErrNotOrderOwner):
			response.ErrorWithStatus(c, http.StatusNotFound, "order not found", "")
		case errors.Is(err, domain.ErrOrderNotCancellable):
			response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
		default:
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}

	response.Success(c, gin.H{"order_id": orderID, "status": domain.OrderStatusCancelled})
}

// ListOrders 管理端订单列表，支持按状态或时间区间筛选。
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	ctx := c.Request.Context()

	if status := c.Query("status"); status != "" {
		orders, total, err := h.query.ListOrdersByStatus(ctx, domain.OrderStatus(status), page, pageSize)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidStatus) {
				response.ErrorWithStatus(c, http.StatusBadRequest, "invalid order status", "")
				return
			}
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
			return
		}
		response.Success(c, gin.H{"orders": orders, "total": total})
		return
	}

	if from := c.Query("from"); from != "" {
		start, err := time.Parse(time.RFC3339, from)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid from time", "")
			return
		}
		end := time.Now()
		if to := c.Query("to"); to != "" {
			end, err = time.Parse(time.RFC3339, to)
			if err != nil {
				response.ErrorWithStatus(c, http.StatusBadRequest, "invalid to time", "")
				return
			}
		}
		orders, total, err := h.query.ListOrdersByDateRange(ctx, start, end, page, pageSize)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
			return
		}
		response.Success(c, gin.H{"orders": orders, "total": total})
		return
	}

	response.ErrorWithStatus(c, http.StatusBadRequest, "status or from filter is required", "")
}

func (h *OrderHandler) GetOrderByNo(c *gin.Context) {
	orderNo := c.Param("order_no")
	order, err := h.query.GetOrderByNo(c.Request.Context(), orderNo)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			response.ErrorWithStatus(c, http.StatusNotFound, "order not found", "")
			return
		}
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, order)
}

// UpdateStatusRequest 管理端状态更新请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid order id", "")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	err = h.cmd.UpdateStatus(c.Request.Context(), application.UpdateStatusCommand{
		OrderID: orderID,
		Status:  domain.OrderStatus(req.Status),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid order status", "")
		case errors.Is(err, domain.ErrOrderNotFound):
			response.ErrorWithStatus(c, http.StatusNotFound, "order not found", "")
		default:
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}

	response.Success(c, gin.H{"order_id": orderID, "status": req.Status})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
