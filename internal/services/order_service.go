// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/models"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

// EventPublisher delivers domain events after they are committed.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// ShippingPolicy computes shipping when the checkout omits it.
type ShippingPolicy struct {
	FlatRate      decimal.Decimal
	FreeThreshold decimal.Decimal
}

func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FlatRate:      decimal.NewFromInt(10),
		FreeThreshold: decimal.NewFromInt(50),
	}
}

func (p ShippingPolicy) ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.FlatRate
}

type OrderItemRequest struct {
	ProductID   uint            `json:"productId" validate:"required"`
	ProductName string          `json:"productName" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price" validate:"min=0"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	ImageURL    *string         `json:"imageUrl,omitempty" validate:"omitempty,max=1024"`
}

type PlaceOrderRequest struct {
	CustomerName    string             `json:"customerName" validate:"required,max=255"`
	CustomerEmail   string             `json:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone   string             `json:"customerPhone" validate:"required,max=50"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required"`
	DeliveryCity    string             `json:"deliveryCity" validate:"required,max=255"`
	DeliveryState   string             `json:"deliveryState" validate:"required,max=255"`
	DeliveryZip     string             `json:"deliveryZip" validate:"required,max=32"`
	PaymentMethod   string             `json:"paymentMethod,omitempty" validate:"omitempty,oneof=COD"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal        *decimal.Decimal   `json:"subtotal,omitempty" validate:"omitempty,min=0"`
	Shipping        *decimal.Decimal   `json:"shipping,omitempty" validate:"omitempty,min=0"`
	Total           *decimal.Decimal   `json:"total,omitempty" validate:"omitempty,min=0"`
	IdempotencyKey  string             `json:"idempotencyKey,omitempty" validate:"omitempty,max=128"`
}

type PlaceOrderResult struct {
	OrderID     uint               `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	Status      models.OrderStatus `json:"status"`
	Total       decimal.Decimal    `json:"total"`
	// Replayed is set when an earlier order with the same idempotency key
	// is returned instead of creating a new one.
	Replayed bool `json:"-"`
}

type OrderService struct {
	db             *gorm.DB
	shipping       ShippingPolicy
	publisher      EventPublisher
	generateNumber func() (string, error)

	// pending tracks event deliveries still in flight.
	pending sync.WaitGroup
}

func NewOrderService(db *gorm.DB, shipping ShippingPolicy, publisher EventPublisher) *OrderService {
	return &OrderService{
		db:             db,
		shipping:       shipping,
		publisher:      publisher,
		generateNumber: GenerateOrderNumber,
	}
}

// GenerateOrderNumber returns ORD-<unix millis>-<0..9999>. It is not unique
// by construction; the unique index on orders.order_number decides.
func GenerateOrderNumber() (string, error) {
	n, err := utils.RandomInt(10000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), n), nil
}

type orderTotals struct {
	subtotal decimal.Decimal
	shipping decimal.Decimal
	total    decimal.Decimal
}

// PlaceOrder validates the checkout, then creates the order, its items and
// every stock decrement in one transaction. Nothing is written when any
// step fails.
func (s *OrderService) PlaceOrder(ctx context.Context, userID *uint, req *PlaceOrderRequest) (*PlaceOrderResult, error) {
	ctx, span := utils.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	result, err := s.placeOrder(ctx, userID, req)
	utils.OrderPlacementLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		utils.OrdersFailedTotal.WithLabelValues(strings.ToLower(string(KindOf(err)))).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.number", result.OrderNumber),
		attribute.Bool("order.replayed", result.Replayed),
	)
	return result, nil
}

func (s *OrderService) placeOrder(ctx context.Context, userID *uint, req *PlaceOrderRequest) (*PlaceOrderResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("missing required fields", utils.GetValidationErrors(err))
	}

	totals, err := s.computeTotals(req)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		if existing, err := s.findByIdempotencyKey(ctx, key); err != nil {
			return nil, err
		} else if existing != nil {
			utils.OrdersReplayedTotal.Inc()
			return existing, nil
		}
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, NewInternalError("order placement cancelled", err)
		}

		number, err := s.generateNumber()
		if err != nil {
			return nil, NewInternalError("failed to generate order number", err)
		}

		order := buildOrder(number, userID, req, totals, key)
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Only tx may be used in here; the pool can be a single connection.
			if err := tx.Create(order).Error; err != nil {
				return err
			}
			for _, item := range order.Items {
				if err := decrementStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			return nil
		})

		if err == nil {
			s.afterCommit(order)
			return &PlaceOrderResult{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Status:      order.Status,
				Total:       order.Total,
			}, nil
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Either the order number or the idempotency key collided.
			if key != "" {
				existing, lookupErr := s.findByIdempotencyKey(ctx, key)
				if lookupErr != nil {
					return nil, lookupErr
				}
				if existing != nil {
					utils.OrdersReplayedTotal.Inc()
					return existing, nil
				}
			}

			utils.OrderNumberCollisionsTotal.Inc()
			logrus.WithFields(logrus.Fields{
				"order_number": number,
				"attempt":      attempt,
			}).Warn("Order number collision, retrying")
			continue
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, NewInternalError("failed to place order", err)
	}
}

// computeTotals fills in omitted amounts and rejects supplied amounts that
// do not add up.
func (s *OrderService) computeTotals(req *PlaceOrderRequest) (orderTotals, error) {
	itemsSubtotal := decimal.Zero
	for _, item := range req.Items {
		itemsSubtotal = itemsSubtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	t := orderTotals{subtotal: itemsSubtotal}
	if req.Subtotal != nil {
		if !req.Subtotal.Equal(itemsSubtotal) {
			return t, NewValidationError("order totals do not match the items", map[string]interface{}{
				"field":    "subtotal",
				"expected": itemsSubtotal,
				"actual":   *req.Subtotal,
			})
		}
		t.subtotal = *req.Subtotal
	}

	if req.Shipping != nil {
		t.shipping = *req.Shipping
	} else {
		t.shipping = s.shipping.ShippingFor(t.subtotal)
	}

	expectedTotal := t.subtotal.Add(t.shipping)
	t.total = expectedTotal
	if req.Total != nil {
		if !req.Total.Equal(expectedTotal) {
			return t, NewValidationError("order totals do not match the items", map[string]interface{}{
				"field":    "total",
				"expected": expectedTotal,
				"actual":   *req.Total,
			})
		}
		t.total = *req.Total
	}

	return t, nil
}

func buildOrder(number string, userID *uint, req *PlaceOrderRequest, totals orderTotals, key string) *models.Order {
	paymentMethod := models.PaymentMethod(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCOD
	}

	order := &models.Order{
		OrderNumber:     number,
		UserID:          userID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   NormalizeEmail(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		DeliveryCity:    strings.TrimSpace(req.DeliveryCity),
		DeliveryState:   strings.TrimSpace(req.DeliveryState),
		DeliveryZip:     strings.TrimSpace(req.DeliveryZip),
		PaymentMethod:   paymentMethod,
		Status:          models.OrderStatusPending,
		Subtotal:        totals.subtotal,
		Shipping:        totals.shipping,
		Total:           totals.total,
		Items:           make([]models.OrderItem, 0, len(req.Items)),
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			ImageURL:    item.ImageURL,
		})
	}
	return order
}

// decrementStock subtracts qty only while enough stock is left, so racing
// checkouts can never drive stock below zero.
func decrementStock(tx *gorm.DB, productID uint, qty int) error {
	result := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var product models.Product
	if err := tx.Select("id", "name", "stock").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError(fmt.Sprintf("product %d not found", productID))
		}
		return err
	}

	return NewInsufficientStockError(
		fmt.Sprintf("insufficient stock for %s", product.Name),
		map[string]interface{}{
			"productId":   product.ID,
			"productName": product.Name,
			"available":   product.Stock,
			"requested":   qty,
		},
	)
}

func (s *OrderService) findByIdempotencyKey(ctx context.Context, key string) (*PlaceOrderResult, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Select("id", "order_number", "status", "total").
		Where("idempotency_key = ?", key).
		Take(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, NewInternalError("failed to look up idempotency key", err)
	}

	return &PlaceOrderResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Total:       order.Total,
		Replayed:    true,
	}, nil
}

func (s *OrderService) afterCommit(order *models.Order) {
	units := 0
	items := make([]models.OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		units += item.Quantity
		items = append(items, models.OrderEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			LineTotal: item.LineTotal(),
		})
	}

	utils.OrdersPlacedTotal.Inc()
	utils.StockUnitsSoldTotal.Add(float64(units))

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"items":        len(order.Items),
		"total":        order.Total.String(),
	}).Info("Order placed")

	if s.publisher == nil {
		return
	}

	event := models.OrderPlacedEvent{
		EventType:   models.EventTypeOrderPlaced,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Items:       items,
		Total:       order.Total,
		OccurredAt:  time.Now().UTC(),
	}

	// The order is committed; delivery problems are only logged.
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.publisher.PublishEvent(ctx, event.OrderNumber, event); err != nil {
			logrus.WithError(err).WithField("order_number", event.OrderNumber).Error("Failed to publish order event")
		}
	}()
}

// Wait blocks until every order event handed to the publisher has been
// delivered or failed, or until ctx is done.
func (s *OrderService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListUserOrders returns the user's orders newest first with their items.
func (s *OrderService) ListUserOrders(ctx context.Context, userID uint, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, NewInternalError("failed to count orders", err)
	}

	var orders []models.Order
	query = utils.ApplySort(query, params, []string{"created_at", "total"})
	query = utils.ApplyPagination(query, params)
	if err := query.Order("id DESC").Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Find(&orders).Error; err != nil {
		return nil, 0, NewInternalError("failed to list orders", err)
	}

	return orders, total, nil
}

// GetUserOrder returns one of the user's orders.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order not found")
		}
		return nil, NewInternalError("failed to load order", err)
	}
	return &order, nil
}
