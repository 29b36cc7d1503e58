package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/abdallah244/store-backend/internal/models"
	"github.com/abdallah244/store-backend/internal/service"
	"github.com/abdallah244/store-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const identityHeader = "X-User-ID"

// Handler contains HTTP handlers
type Handler struct {
	orderService *service.OrderService
}

// NewHandler creates a new HTTP handler
func NewHandler(orderService *service.OrderService) *Handler {
	return &Handler{
		orderService: orderService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	orders := router.Group("/api/orders")
	orders.Use(identityMiddleware())
	{
		orders.POST("", h.createOrder)
		orders.GET("/my-orders", h.listMyOrders)
		orders.POST("/:orderId/cancel", h.cancelOrder)

		orders.GET("/admin/all", h.listAllOrders)
		orders.PATCH("/admin/:orderId/status", h.updateOrderStatus)
		orders.DELETE("/admin/:orderId", h.deleteOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), actorID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// listMyOrders returns the calling account's orders
func (h *Handler) listMyOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// cancelOrder cancels the caller's pending order
func (h *Handler) cancelOrder(c *gin.Context) {
	order, err := h.orderService.CancelOrder(c.Request.Context(), actorID(c), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled",
		"order":   order,
	})
}

// listAllOrders returns every order (admin only)
func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.orderService.ListAllOrders(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"admin_notes"`
}

// updateOrderStatus applies an admin status transition
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orderService.TransitionOrder(
		c.Request.Context(), actorID(c), c.Param("orderId"), req.Status, req.AdminNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// deleteOrder removes an order (admin only)
func (h *Handler) deleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), actorID(c), c.Param("orderId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// identityMiddleware extracts the authenticated account id. Authentication
// itself happens upstream; the serving layer forwards the identity header.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(identityHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid user session",
			})
			return
		}
		c.Set("accountID", userID)
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	return c.GetString("accountID")
}

// respondError maps workflow errors to HTTP responses. Business-rule failures
// surface with their reason; anything unexpected becomes a generic 500.
func respondError(c *gin.Context, err error) {
	var stockErr *models.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":       stockErr.Error(),
			"stock_details": stockErr.Shortfalls,
		})
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, models.ErrProfileIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":                     err.Error(),
			"requires_profile_completion": true,
		})
	case errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrNotPending),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		util.GetLogger().Error("Unhandled error in HTTP handler", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
