// internal/handlers/order.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/fashion-storefront/internal/i18n"
	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// POST /orders
// Guests may check out; a signed in customer's order is attached to them.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req services.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	if key := strings.TrimSpace(c.GetHeader(idempotencyKeyHeader)); key != "" {
		req.IdempotencyKey = key
	}

	var userID *uint
	if id, ok := utils.GetUserIDFromContext(c); ok {
		userID = &id
	}

	result, err := h.orderService.PlaceOrder(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.localizeCheckoutError(c, err))
		return
	}

	if result.Replayed {
		c.Header(replayedHeader, "true")
	}
	utils.CreatedResponse(c, result)
}

// GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRequired))
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.ListUserOrders(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRequired))
		return
	}

	orderID, ok := parseIDParam(c, "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetUserOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, localize(err, services.KindNotFound, i18n.T(utils.GetLangFromContext(c), i18n.KeyOrderNotFound)))
		return
	}

	utils.SuccessResponse(c, order)
}

func (h *OrderHandler) localizeCheckoutError(c *gin.Context, err error) error {
	lang := utils.GetLangFromContext(c)

	var appErr *services.AppError
	if !errors.As(err, &appErr) {
		return err
	}

	switch appErr.Kind {
	case services.KindValidation:
		// Field errors come as a list; totals mismatches as a single map.
		if _, ok := appErr.Details.([]utils.ValidationError); ok {
			return localize(err, appErr.Kind, i18n.T(lang, i18n.KeyOrderMissingFields))
		}
		if _, ok := appErr.Details.(map[string]interface{}); ok {
			return localize(err, appErr.Kind, i18n.T(lang, i18n.KeyOrderTotalsMismatch))
		}
	case services.KindInsufficientStock:
		if details, ok := appErr.Details.(map[string]interface{}); ok {
			if name, ok := details["productName"].(string); ok {
				return localize(err, appErr.Kind, i18n.T(lang, i18n.KeyOrderInsufficientStock, name))
			}
		}
	case services.KindNotFound:
		return localize(err, appErr.Kind, i18n.T(lang, i18n.KeyProductNotFound))
	}
	return err
}
