package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/events"
	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/ordernum"
	"restaurant-ordering-api/pricing"
	"restaurant-ordering-api/statemachine"

	"gorm.io/gorm"
)

type OrderService struct {
	base
	numbers ordernum.Generator
}

type OrderLine struct {
	MenuItemID          uint   `json:"menuItemId" binding:"required"`
	Quantity            int    `json:"quantity" binding:"required,min=1"`
	SpecialInstructions string `json:"specialInstructions"`
}

type CreateOrderInput struct {
	Items           []OrderLine             `json:"items" binding:"required,min=1,dive"`
	OrderType       models.OrderType        `json:"orderType" binding:"required,oneof=delivery pickup dine-in"`
	DeliveryAddress *models.DeliveryAddress `json:"deliveryAddress"`
	ScheduledFor    *time.Time              `json:"scheduledFor"`
	CustomerNotes   string                  `json:"customerNotes"`
	Tip             float64                 `json:"tip" binding:"gte=0"`
	TableID         *uint                   `json:"tableId"`
	ReservationID   *uint                   `json:"reservationId"`
}

type OrderFilter struct {
	Status    models.OrderStatus `form:"status"`
	OrderType models.OrderType   `form:"orderType" binding:"omitempty,oneof=delivery pickup dine-in"`
	Date      string             `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Page
}

type UpdateOrderStatusInput struct {
	Status          models.OrderStatus `json:"status" binding:"required"`
	RestaurantNotes *string            `json:"restaurantNotes"`
}

// Create prices the cart from current menu records and stores the order,
// its lines and the first history entry in one transaction.
func (s *OrderService) Create(ctx context.Context, customerID uint, in CreateOrderInput) (*models.Order, error) {
	if in.OrderType == models.OrderTypeDelivery && !hasStreetAndCity(in.DeliveryAddress) {
		return nil, apperr.BadRequest("Delivery address is required for delivery orders")
	}

	db := s.db.WithContext(ctx)
	ids := make([]uint, 0, len(in.Items))
	for _, l := range in.Items {
		ids = append(ids, l.MenuItemID)
	}
	var menu []models.MenuItem
	if err := db.Where("id IN ?", ids).Find(&menu).Error; err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	byID := make(map[uint]models.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	lines := make([]pricing.Line, 0, len(in.Items))
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, l := range in.Items {
		m, ok := byID[l.MenuItemID]
		if !ok || !m.IsAvailable {
			return nil, apperr.BadRequest("Menu item %d not available", l.MenuItemID)
		}
		lines = append(lines, pricing.Line{UnitPrice: m.Price, Quantity: l.Quantity})
		items = append(items, models.OrderItem{
			MenuItemID:          m.ID,
			Name:                m.Name,
			Quantity:            l.Quantity,
			Price:               m.Price,
			SpecialInstructions: l.SpecialInstructions,
		})
	}

	quote, err := pricing.QuoteOrder(lines, in.OrderType, in.Tip)
	if err != nil {
		return nil, apperr.BadRequest("%s", err.Error())
	}

	if err := s.checkReferences(ctx, in.TableID, in.ReservationID); err != nil {
		return nil, err
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	now := s.now()
	order := models.Order{
		OrderNumber:           number,
		CustomerID:            customerID,
		Items:                 items,
		OrderType:             in.OrderType,
		Status:                models.OrderPending,
		PaymentStatus:         models.OrderPaymentPending,
		Subtotal:              quote.Subtotal,
		DeliveryFee:           quote.DeliveryFee,
		Tax:                   quote.Tax,
		Tip:                   quote.Tip,
		Total:                 quote.Total,
		EstimatedDeliveryTime: pricing.PromisedTime(now, in.OrderType, in.ScheduledFor),
		ScheduledFor:          in.ScheduledFor,
		CustomerNotes:         in.CustomerNotes,
		TableID:               in.TableID,
		ReservationID:         in.ReservationID,
	}
	if in.OrderType == models.OrderTypeDelivery {
		order.DeliveryAddress = *in.DeliveryAddress
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.OrderPending,
			Actor:     string(statemachine.ActorCustomer),
			ChangedBy: &customerID,
			Note:      "Order placed",
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("create order history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order_created", logger.RequestIDFrom(ctx), "order placed",
		slog.String("order_number", order.OrderNumber),
		slog.Float64("total", order.Total))
	s.publish(ctx, events.New(events.OrderCreated, order.ID, map[string]any{
		"orderNumber": order.OrderNumber,
		"customerId":  order.CustomerID,
		"orderType":   order.OrderType,
		"total":       order.Total,
	}))

	return s.load(ctx, order.ID)
}

func hasStreetAndCity(a *models.DeliveryAddress) bool {
	return a != nil && strings.TrimSpace(a.Street) != "" && strings.TrimSpace(a.City) != ""
}

func (s *OrderService) checkReferences(ctx context.Context, tableID, reservationID *uint) error {
	db := s.db.WithContext(ctx)
	var count int64
	if tableID != nil {
		if err := db.Model(&models.Table{}).Where("id = ?", *tableID).Count(&count).Error; err != nil {
			return fmt.Errorf("check table: %w", err)
		}
		if count == 0 {
			return apperr.BadRequest("Table %d does not exist", *tableID)
		}
	}
	if reservationID != nil {
		if err := db.Model(&models.Reservation{}).Where("id = ?", *reservationID).Count(&count).Error; err != nil {
			return fmt.Errorf("check reservation: %w", err)
		}
		if count == 0 {
			return apperr.BadRequest("Reservation %d does not exist", *reservationID)
		}
	}
	return nil
}

func (s *OrderService) load(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items.MenuItem").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Customer").
		Preload("AssignedDriver").
		Preload("Table").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

// Get returns the order only to the customer who placed it.
func (s *OrderService) Get(ctx context.Context, id, customerID uint) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, apperr.Forbidden("Not authorized to view this order")
	}
	return order, nil
}

// ListMine filters by status only.
func (s *OrderService) ListMine(ctx context.Context, customerID uint, f OrderFilter) ([]models.Order, PageInfo, error) {
	if f.Status != "" && !statemachine.Order.IsValid(f.Status) {
		return nil, PageInfo{}, apperr.BadRequest("Invalid order status %q", f.Status)
	}
	q := s.db.WithContext(ctx).Model(&models.Order{}).Where("customer_id = ?", customerID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return s.list(q, f.Page)
}

// ListAll is the staff view, filterable by status, order type and creation day (UTC).
func (s *OrderService) ListAll(ctx context.Context, f OrderFilter) ([]models.Order, PageInfo, error) {
	if f.Status != "" && !statemachine.Order.IsValid(f.Status) {
		return nil, PageInfo{}, apperr.BadRequest("Invalid order status %q", f.Status)
	}
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OrderType != "" {
		q = q.Where("order_type = ?", f.OrderType)
	}
	if f.Date != "" {
		day, err := time.Parse(time.DateOnly, f.Date)
		if err != nil {
			return nil, PageInfo{}, apperr.BadRequest("Invalid date %q, expected YYYY-MM-DD", f.Date)
		}
		q = q.Where("created_at >= ? AND created_at < ?", day, day.Add(24*time.Hour))
	}
	return s.list(q, f.Page)
}

func (s *OrderService) list(q *gorm.DB, p Page) ([]models.Order, PageInfo, error) {
	page := p.normalize()
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, PageInfo{}, fmt.Errorf("count orders: %w", err)
	}
	var orders []models.Order
	err := page.apply(q).Preload("Items.MenuItem").Preload("Customer").Order("created_at DESC").Order("id DESC").Find(&orders).Error
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("list orders: %w", err)
	}
	return orders, pageInfo(page, total), nil
}

// UpdateStatus is the staff-driven transition. Moving to delivered stamps
// actualDeliveryTime; cancelling also cancels open payments.
func (s *OrderService) UpdateStatus(ctx context.Context, id, adminID uint, in UpdateOrderStatusInput) (*models.Order, error) {
	if !statemachine.Order.IsValid(in.Status) {
		return nil, apperr.BadRequest("Invalid order status %q", in.Status)
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := order.Status

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := moveOrder(tx, order, in.Status, statemachine.ActorAdmin, &adminID, "", s.now()); err != nil {
			return err
		}
		if in.RestaurantNotes != nil {
			if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("restaurant_notes", *in.RestaurantNotes).Error; err != nil {
				return fmt.Errorf("update restaurant notes: %w", err)
			}
		}
		if in.Status == models.OrderCancelled {
			return cancelOpenPayments(tx, order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, order, from, statemachine.ActorAdmin)
	return s.load(ctx, id)
}

// Cancel lets the owner cancel any order that has not finished.
func (s *OrderService) Cancel(ctx context.Context, id, customerID uint, reason string) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, apperr.Forbidden("Not authorized to cancel this order")
	}
	if statemachine.Order.IsTerminal(order.Status) {
		return nil, apperr.BadRequest("Order cannot be cancelled in its current status (%s)", order.Status)
	}
	from := order.Status

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := moveOrder(tx, order, models.OrderCancelled, statemachine.ActorCustomer, &customerID, reason, s.now()); err != nil {
			return err
		}
		return cancelOpenPayments(tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, order, from, statemachine.ActorCustomer)
	return s.load(ctx, id)
}

func (s *OrderService) publishStatusChange(ctx context.Context, order *models.Order, from models.OrderStatus, actor statemachine.Actor) {
	s.log.Info("order_status_changed", logger.RequestIDFrom(ctx), "order status changed",
		slog.String("order_number", order.OrderNumber),
		slog.String("from", string(from)),
		slog.String("to", string(order.Status)),
		slog.String("actor", string(actor)))

	data := map[string]any{
		"orderNumber": order.OrderNumber,
		"from":        from,
		"to":          order.Status,
		"actor":       actor,
	}
	s.publish(ctx, events.New(events.OrderStatusChanged, order.ID, data))
	if order.Status == models.OrderCancelled {
		s.publish(ctx, events.New(events.OrderCancelled, order.ID, data))
	}
}

// moveOrder applies one checked status change inside tx and records it in
// the order history. The update is conditional on the status the caller
// read, so two concurrent writers cannot both succeed.
func moveOrder(tx *gorm.DB, order *models.Order, to models.OrderStatus, actor statemachine.Actor, changedBy *uint, note string, now time.Time) error {
	if err := statemachine.Order.CanTransition(order.Status, to, actor); err != nil {
		return apperr.BadRequest("%s", err.Error())
	}

	updates := map[string]any{"status": to}
	if to == models.OrderDelivered {
		updates["actual_delivery_time"] = now
	}
	res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, order.Status).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("Order %s was changed by another request, reload and retry", order.OrderNumber)
	}

	history := models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   to,
		Actor:      string(actor),
		ChangedBy:  changedBy,
		Note:       note,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("create order history: %w", err)
	}

	order.Status = to
	if to == models.OrderDelivered {
		order.ActualDeliveryTime = &now
	}
	return nil
}

func cancelOpenPayments(tx *gorm.DB, orderID uint) error {
	err := tx.Model(&models.Payment{}).
		Where("order_id = ? AND status IN ?", orderID, []models.PaymentStatus{models.PaymentPending, models.PaymentProcessing}).
		Update("status", models.PaymentCancelled).Error
	if err != nil {
		return fmt.Errorf("cancel open payments: %w", err)
	}
	return nil
}
