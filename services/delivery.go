package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/events"
	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/pricing"
	"restaurant-ordering-api/statemachine"

	"gorm.io/gorm"
)

const originAddress = "Restaurant Location"

type DeliveryService struct {
	base
	estimator *pricing.Estimator
}

// Viewer is the authenticated caller of a tracking read.
type Viewer struct {
	UserID uint
	Role   models.UserRole
}

func (v Viewer) isStaff() bool {
	return v.Role == models.RoleAdmin || v.Role == models.RoleDriver
}

type CreateDeliveryInput struct {
	OrderID               uint                   `json:"orderId" binding:"required"`
	DriverID              *uint                  `json:"driverId"`
	Driver                *models.DriverSnapshot `json:"driverInfo"`
	EstimatedDeliveryTime *time.Time             `json:"estimatedDeliveryTime"`
	DeliveryInstructions  string                 `json:"deliveryInstructions"`
	IsContactless         bool                   `json:"isContactlessDelivery"`
}

type LocationInput struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Address   string   `json:"address"`
}

type DeliveryStatusInput struct {
	Status        models.DeliveryStatus `json:"status" binding:"required"`
	DeliveryNotes *string               `json:"deliveryNotes"`
}

type RatingInput struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

type EstimateInput struct {
	CustomerLat *float64 `json:"customerLat" binding:"required,gte=-90,lte=90"`
	CustomerLng *float64 `json:"customerLng" binding:"required,gte=-180,lte=180"`
}

// Estimate prices a delivery to a destination without storing anything.
func (s *DeliveryService) Estimate(in EstimateInput) pricing.Estimate {
	return s.estimator.Estimate(pricing.Point{Lat: *in.CustomerLat, Lng: *in.CustomerLng})
}

// Create opens tracking for a delivery order that is ready to leave. The
// courier starts at the restaurant and the order moves to out-for-delivery.
func (s *DeliveryService) Create(ctx context.Context, staff Viewer, in CreateDeliveryInput) (*models.DeliveryTracking, error) {
	db := s.db.WithContext(ctx)

	var order models.Order
	err := db.First(&order, in.OrderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.OrderType != models.OrderTypeDelivery {
		return nil, apperr.BadRequest("Order is not for delivery")
	}
	var existing int64
	if err := db.Model(&models.DeliveryTracking{}).Where("order_id = ?", order.ID).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check tracking: %w", err)
	}
	if existing > 0 {
		return nil, apperr.BadRequest("Delivery tracking already exists for this order")
	}

	var snapshot models.DriverSnapshot
	if in.Driver != nil {
		snapshot = *in.Driver
	}
	if in.DriverID != nil {
		var driver models.User
		err := db.Where("id = ? AND role = ?", *in.DriverID, models.RoleDriver).First(&driver).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.BadRequest("Driver %d not found", *in.DriverID)
		}
		if err != nil {
			return nil, fmt.Errorf("load driver: %w", err)
		}
		if snapshot.Name == "" {
			snapshot.Name = driver.FullName()
		}
		if snapshot.Phone == "" {
			snapshot.Phone = driver.Phone
		}
		if snapshot.VehicleType == "" {
			snapshot.VehicleType = driver.DriverInfo.VehicleType
		}
		if snapshot.VehicleNumber == "" {
			snapshot.VehicleNumber = driver.DriverInfo.VehicleNumber
		}
	}

	now := s.now()
	eta := order.EstimatedDeliveryTime
	if in.EstimatedDeliveryTime != nil {
		eta = in.EstimatedDeliveryTime.UTC()
	} else if addr := order.DeliveryAddress; addr.Latitude != nil && addr.Longitude != nil {
		eta = s.estimator.Estimate(pricing.Point{Lat: *addr.Latitude, Lng: *addr.Longitude}).EstimatedDeliveryTime
	}
	instructions := in.DeliveryInstructions
	if instructions == "" {
		instructions = order.DeliveryAddress.DeliveryInstructions
	}

	tracking := models.DeliveryTracking{
		OrderID:               order.ID,
		DriverID:              in.DriverID,
		Driver:                snapshot,
		Status:                models.DeliveryAssigned,
		EstimatedDeliveryTime: eta,
		CurrentLocation: models.Location{
			Latitude:    s.estimator.Origin.Lat,
			Longitude:   s.estimator.Origin.Lng,
			Address:     originAddress,
			LastUpdated: now,
		},
		DeliveryInstructions: instructions,
		IsContactless:        in.IsContactless,
	}
	from := order.Status

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Order").Create(&tracking).Error; err != nil {
			return fmt.Errorf("create tracking: %w", err)
		}
		if err := moveOrder(tx, &order, models.OrderOutForDelivery, statemachine.ActorSystem, &staff.UserID, "Handed to courier", now); err != nil {
			return err
		}
		if in.DriverID != nil {
			if err := tx.Model(&order).Update("assigned_driver_id", *in.DriverID).Error; err != nil {
				return fmt.Errorf("assign driver: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("delivery_created", logger.RequestIDFrom(ctx), "delivery tracking opened",
		slog.String("order_number", order.OrderNumber),
		slog.String("driver", snapshot.Name))
	s.publish(ctx, events.New(events.DeliveryCreated, tracking.ID, map[string]any{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"driver":      snapshot.Name,
	}))
	s.publish(ctx, events.New(events.OrderStatusChanged, order.ID, map[string]any{
		"orderNumber": order.OrderNumber,
		"from":        from,
		"to":          order.Status,
		"actor":       statemachine.ActorSystem,
	}))
	return s.byOrder(ctx, order.ID)
}

func (s *DeliveryService) byOrder(ctx context.Context, orderID uint) (*models.DeliveryTracking, error) {
	var t models.DeliveryTracking
	err := s.db.WithContext(ctx).
		Preload("Route", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Order").
		Where("order_id = ?", orderID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Delivery tracking not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load tracking: %w", err)
	}
	return &t, nil
}

// Track is readable by the order's customer and by staff.
func (s *DeliveryService) Track(ctx context.Context, orderID uint, v Viewer) (*models.DeliveryTracking, error) {
	t, err := s.byOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !v.isStaff() && (t.Order == nil || t.Order.CustomerID != v.UserID) {
		return nil, apperr.Forbidden("Not authorized to track this order")
	}
	return t, nil
}

// Watch emits the tracking record now and again whenever it changes,
// polling every interval. The channel closes once the delivery is finished
// or its order is cancelled, or when ctx ends.
func (s *DeliveryService) Watch(ctx context.Context, orderID uint, v Viewer, every time.Duration) (<-chan models.DeliveryTracking, error) {
	first, err := s.Track(ctx, orderID, v)
	if err != nil {
		return nil, err
	}

	out := make(chan models.DeliveryTracking)
	go func() {
		defer close(out)
		last := *first
		if !send(ctx, out, last) || closed(&last) {
			return
		}

		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			cur, err := s.byOrder(ctx, orderID)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error("delivery_watch", logger.RequestIDFrom(ctx), "tracking poll failed", err,
						slog.Uint64("order_id", uint64(orderID)))
				}
				return
			}
			if cur.UpdatedAt.Equal(last.UpdatedAt) && len(cur.Route) == len(last.Route) && !orderCancelled(cur) {
				continue
			}
			last = *cur
			if !send(ctx, out, last) || closed(&last) {
				return
			}
		}
	}()
	return out, nil
}

func orderCancelled(t *models.DeliveryTracking) bool {
	return t.Order != nil && t.Order.Status == models.OrderCancelled
}

// closed reports whether the tracking will never change again.
func closed(t *models.DeliveryTracking) bool {
	return t.Status == models.DeliveryDelivered || orderCancelled(t)
}

func send(ctx context.Context, out chan<- models.DeliveryTracking, t models.DeliveryTracking) bool {
	select {
	case out <- t:
		return true
	case <-ctx.Done():
		return false
	}
}

// UpdateLocation appends a route point and moves the courier's current position.
func (s *DeliveryService) UpdateLocation(ctx context.Context, orderID uint, in LocationInput) (*models.DeliveryTracking, error) {
	t, err := s.byOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if t.Status == models.DeliveryDelivered {
		return nil, apperr.BadRequest("Delivery is already completed")
	}
	if orderCancelled(t) {
		return nil, apperr.BadRequest("Order was cancelled")
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		point := models.RoutePoint{TrackingID: t.ID, Latitude: *in.Latitude, Longitude: *in.Longitude, Timestamp: now}
		if err := tx.Create(&point).Error; err != nil {
			return fmt.Errorf("append route point: %w", err)
		}
		return tx.Model(&models.DeliveryTracking{}).Where("id = ?", t.ID).Updates(map[string]any{
			"current_latitude":     *in.Latitude,
			"current_longitude":    *in.Longitude,
			"current_address":      in.Address,
			"current_last_updated": now,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return s.byOrder(ctx, orderID)
}

// UpdateStatus moves the delivery forward. Reaching delivered also
// delivers the order.
func (s *DeliveryService) UpdateStatus(ctx context.Context, orderID uint, staff Viewer, in DeliveryStatusInput) (*models.DeliveryTracking, error) {
	if !statemachine.Delivery.IsValid(in.Status) {
		return nil, apperr.BadRequest("Invalid delivery status %q", in.Status)
	}
	t, err := s.byOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if orderCancelled(t) {
		return nil, apperr.BadRequest("Order was cancelled")
	}
	actor := statemachine.ActorDriver
	if staff.Role == models.RoleAdmin {
		actor = statemachine.ActorAdmin
	}
	if err := statemachine.Delivery.CanTransition(t.Status, in.Status, actor); err != nil {
		return nil, apperr.BadRequest("%s", err.Error())
	}
	from := t.Status
	orderFrom := t.Order.Status

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": in.Status}
		if in.DeliveryNotes != nil {
			updates["delivery_notes"] = *in.DeliveryNotes
		}
		if in.Status == models.DeliveryDelivered {
			updates["actual_delivery_time"] = now
		}
		res := tx.Model(&models.DeliveryTracking{}).Where("id = ? AND status = ?", t.ID, t.Status).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update delivery status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Delivery for order %d was changed by another request, reload and retry", orderID)
		}
		if in.Status != models.DeliveryDelivered {
			return nil
		}
		return moveOrder(tx, t.Order, models.OrderDelivered, statemachine.ActorSystem, &staff.UserID, "Delivered by courier", now)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.DeliveryStatusChanged, t.ID, map[string]any{
		"orderId": orderID,
		"from":    from,
		"to":      in.Status,
	}))
	if in.Status == models.DeliveryDelivered {
		s.publish(ctx, events.New(events.OrderStatusChanged, orderID, map[string]any{
			"orderNumber": t.Order.OrderNumber,
			"from":        orderFrom,
			"to":          models.OrderDelivered,
			"actor":       statemachine.ActorSystem,
		}))
	}
	return s.byOrder(ctx, orderID)
}

// Rate records the customer's rating once the order has arrived.
func (s *DeliveryService) Rate(ctx context.Context, orderID, customerID uint, in RatingInput) (*models.DeliveryTracking, error) {
	t, err := s.Track(ctx, orderID, Viewer{UserID: customerID, Role: models.RoleCustomer})
	if err != nil {
		return nil, err
	}
	if t.Status != models.DeliveryDelivered {
		return nil, apperr.BadRequest("Only delivered orders can be rated")
	}
	if t.CustomerRating != nil {
		return nil, apperr.BadRequest("Delivery has already been rated")
	}
	err = s.db.WithContext(ctx).Model(&models.DeliveryTracking{}).Where("id = ?", t.ID).Updates(map[string]any{
		"customer_rating":   in.Rating,
		"delivery_feedback": in.Feedback,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("rate delivery: %w", err)
	}
	return s.byOrder(ctx, orderID)
}

// Active lists deliveries still on the road, oldest first. Deliveries of
// cancelled orders are left out.
func (s *DeliveryService) Active(ctx context.Context) ([]models.DeliveryTracking, error) {
	var list []models.DeliveryTracking
	err := s.db.WithContext(ctx).Preload("Order").
		Joins("JOIN orders ON orders.id = delivery_trackings.order_id").
		Where("delivery_trackings.status <> ? AND orders.status <> ?", models.DeliveryDelivered, models.OrderCancelled).
		Order("delivery_trackings.created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list active deliveries: %w", err)
	}
	return list, nil
}
