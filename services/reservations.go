package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/availability"
	"restaurant-ordering-api/events"
	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/statemachine"

	"gorm.io/gorm"
)

const reservationPageSize = 20

type ReservationService struct {
	base
	strictOverlap bool
}

type PreOrderInput struct {
	MenuItemID          uint   `json:"menuItemId" binding:"required"`
	Quantity            int    `json:"quantity" binding:"required,min=1"`
	SpecialInstructions string `json:"specialInstructions"`
}

type BookInput struct {
	FirstName       string          `json:"firstName" binding:"required"`
	LastName        string          `json:"lastName" binding:"required"`
	Email           string          `json:"email" binding:"required,email"`
	Phone           string          `json:"phone" binding:"required"`
	Date            string          `json:"date" binding:"required,datetime=2006-01-02"`
	Time            string          `json:"time" binding:"required,clock"`
	PartySize       int             `json:"partySize" binding:"required,min=1,max=20"`
	TableID         *uint           `json:"tableId"`
	Duration        float64         `json:"duration" binding:"omitempty,gt=0,lte=6"`
	SpecialRequests string          `json:"specialRequests"`
	Occasion        string          `json:"occasion" binding:"omitempty,oneof=birthday anniversary business date other"`
	PreOrderItems   []PreOrderInput `json:"preOrderItems" binding:"omitempty,dive"`
}

type ReservationFilter struct {
	Date   string                   `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Status models.ReservationStatus `form:"status"`
	Page
}

type UpdateReservationStatusInput struct {
	Status          models.ReservationStatus `json:"status" binding:"required"`
	RestaurantNotes *string                  `json:"restaurantNotes"`
}

// Book stores a pending reservation. When a table is named it must be in
// service and free at that time, and it must seat the party.
func (s *ReservationService) Book(ctx context.Context, customerID *uint, in BookInput) (*models.Reservation, error) {
	if _, err := availability.ParseClock(in.Time); err != nil {
		return nil, apperr.BadRequest("Time must be in HH:MM format")
	}
	duration := in.Duration
	if duration == 0 {
		duration = models.DefaultReservationHours
	}

	if in.TableID != nil {
		var table models.Table
		err := s.db.WithContext(ctx).First(&table, *in.TableID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load table: %w", err)
		}
		if err != nil || !table.IsAvailable {
			return nil, apperr.BadRequest("Selected table is not available")
		}
		clash, err := s.clashes(s.db.WithContext(ctx), 0, table.ID, in.Date, in.Time, duration)
		if err != nil {
			return nil, err
		}
		if clash {
			return nil, apperr.BadRequest("Table is already reserved at this time")
		}
		if table.Capacity < in.PartySize {
			return nil, apperr.BadRequest("Table capacity is insufficient for party size")
		}
	}

	preOrders := make([]models.PreOrderItem, 0, len(in.PreOrderItems))
	if len(in.PreOrderItems) > 0 {
		ids := make([]uint, 0, len(in.PreOrderItems))
		for _, p := range in.PreOrderItems {
			ids = append(ids, p.MenuItemID)
		}
		var found int64
		if err := s.db.WithContext(ctx).Model(&models.MenuItem{}).Where("id IN ?", ids).Distinct("id").Count(&found).Error; err != nil {
			return nil, fmt.Errorf("check pre-order items: %w", err)
		}
		if int(found) != len(uniqueIDs(ids)) {
			return nil, apperr.BadRequest("Pre-order contains an unknown menu item")
		}
		for _, p := range in.PreOrderItems {
			preOrders = append(preOrders, models.PreOrderItem{
				MenuItemID:          p.MenuItemID,
				Quantity:            p.Quantity,
				SpecialInstructions: p.SpecialInstructions,
			})
		}
	}

	occasion := in.Occasion
	if occasion == "" {
		occasion = "other"
	}
	reservation := models.Reservation{
		CustomerID:      customerID,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           in.Phone,
		Date:            in.Date,
		Time:            in.Time,
		PartySize:       in.PartySize,
		TableID:         in.TableID,
		Duration:        duration,
		SpecialRequests: in.SpecialRequests,
		Occasion:        occasion,
		Status:          models.ReservationPending,
		PreOrderItems:   preOrders,
	}
	if err := s.db.WithContext(ctx).Create(&reservation).Error; err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.log.Info("reservation_created", logger.RequestIDFrom(ctx), "reservation booked",
		slog.Uint64("reservation_id", uint64(reservation.ID)),
		slog.String("date", reservation.Date),
		slog.String("time", reservation.Time))
	s.publish(ctx, events.New(events.ReservationCreated, reservation.ID, map[string]any{
		"date":      reservation.Date,
		"time":      reservation.Time,
		"partySize": reservation.PartySize,
		"tableId":   reservation.TableID,
	}))
	return s.load(ctx, reservation.ID)
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// clashes reports whether another holding reservation occupies tableID at
// the given slot. exclude skips the reservation being moved.
func (s *ReservationService) clashes(db *gorm.DB, exclude, tableID uint, date, clock string, duration float64) (bool, error) {
	holding, err := holdingBookings(db, date, exclude)
	if err != nil {
		return false, err
	}
	candidate := availability.Booking{TableID: tableID, Time: clock, Duration: duration}
	return availability.Conflicts(candidate, holding, s.strictOverlap), nil
}

// holdingBookings lists the table-occupying reservations of one date.
func holdingBookings(db *gorm.DB, date string, exclude uint) ([]availability.Booking, error) {
	var rows []models.Reservation
	q := db.Where("date = ? AND status IN ? AND table_id IS NOT NULL", date, models.HoldingStatuses)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load reservations for %s: %w", date, err)
	}
	out := make([]availability.Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, availability.Booking{TableID: *r.TableID, Time: r.Time, Duration: r.Duration})
	}
	return out, nil
}

func (s *ReservationService) load(ctx context.Context, id uint) (*models.Reservation, error) {
	var r models.Reservation
	err := s.db.WithContext(ctx).Preload("Table").Preload("PreOrderItems").First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Reservation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	return &r, nil
}

func ownsReservation(r *models.Reservation, customerID uint) bool {
	return r.CustomerID != nil && *r.CustomerID == customerID
}

func (s *ReservationService) Get(ctx context.Context, id, customerID uint) (*models.Reservation, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsReservation(r, customerID) {
		return nil, apperr.Forbidden("Not authorized to view this reservation")
	}
	return r, nil
}

func (s *ReservationService) ListMine(ctx context.Context, customerID uint) ([]models.Reservation, error) {
	var list []models.Reservation
	err := s.db.WithContext(ctx).Preload("Table").
		Where("customer_id = ?", customerID).
		Order("date DESC").Order("time ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return list, nil
}

func (s *ReservationService) ListAll(ctx context.Context, f ReservationFilter) ([]models.Reservation, PageInfo, error) {
	if f.Status != "" && !statemachine.Reservation.IsValid(f.Status) {
		return nil, PageInfo{}, apperr.BadRequest("Invalid reservation status %q", f.Status)
	}
	if f.Limit == 0 {
		f.Limit = reservationPageSize
	}
	page := f.Page.normalize()

	q := s.db.WithContext(ctx).Model(&models.Reservation{})
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, PageInfo{}, fmt.Errorf("count reservations: %w", err)
	}
	var list []models.Reservation
	err := page.apply(q).Preload("Table").Order("date DESC").Order("time ASC").Find(&list).Error
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("list reservations: %w", err)
	}
	return list, pageInfo(page, total), nil
}

// Cancel lets the booking's owner cancel it while it is still open.
func (s *ReservationService) Cancel(ctx context.Context, id, customerID uint) (*models.Reservation, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsReservation(r, customerID) {
		return nil, apperr.Forbidden("Not authorized to cancel this reservation")
	}
	if statemachine.Reservation.CanTransition(r.Status, models.ReservationCancelled, statemachine.ActorCustomer) != nil {
		return nil, apperr.BadRequest("Cannot cancel this reservation (status: %s)", r.Status)
	}
	from := r.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.move(tx, r, models.ReservationCancelled, statemachine.ActorCustomer, nil)
	})
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, r, from, statemachine.ActorCustomer)
	return r, nil
}

// UpdateStatus is the staff transition. Seating stamps checkInTime and
// completing stamps checkOutTime, each only the first time. Moving into a
// table-holding state re-checks the table against other holding bookings.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uint, in UpdateReservationStatusInput) (*models.Reservation, error) {
	if !statemachine.Reservation.IsValid(in.Status) {
		return nil, apperr.BadRequest("Invalid reservation status %q", in.Status)
	}
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := r.Status

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.TableID != nil && isHolding(in.Status) && !isHolding(r.Status) {
			clash, err := s.clashes(tx, r.ID, *r.TableID, r.Date, r.Time, r.Duration)
			if err != nil {
				return err
			}
			if clash {
				return apperr.BadRequest("Table is already reserved at this time")
			}
		}
		return s.move(tx, r, in.Status, statemachine.ActorAdmin, in.RestaurantNotes)
	})
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, r, from, statemachine.ActorAdmin)
	return r, nil
}

func isHolding(status models.ReservationStatus) bool {
	for _, h := range models.HoldingStatuses {
		if status == h {
			return true
		}
	}
	return false
}

func (s *ReservationService) move(tx *gorm.DB, r *models.Reservation, to models.ReservationStatus, actor statemachine.Actor, notes *string) error {
	if err := statemachine.Reservation.CanTransition(r.Status, to, actor); err != nil {
		return apperr.BadRequest("%s", err.Error())
	}
	now := s.now()
	updates := map[string]any{"status": to}
	if to == models.ReservationSeated && r.CheckInTime == nil {
		updates["check_in_time"] = now
		r.CheckInTime = &now
	}
	if to == models.ReservationCompleted && r.CheckOutTime == nil {
		updates["check_out_time"] = now
		r.CheckOutTime = &now
	}
	if notes != nil {
		updates["restaurant_notes"] = *notes
		r.RestaurantNotes = *notes
	}
	res := tx.Model(&models.Reservation{}).Where("id = ? AND status = ?", r.ID, r.Status).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update reservation status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("Reservation %d was changed by another request, reload and retry", r.ID)
	}
	r.Status = to
	return nil
}

func (s *ReservationService) publishStatusChange(ctx context.Context, r *models.Reservation, from models.ReservationStatus, actor statemachine.Actor) {
	s.log.Info("reservation_status_changed", logger.RequestIDFrom(ctx), "reservation status changed",
		slog.Uint64("reservation_id", uint64(r.ID)),
		slog.String("from", string(from)),
		slog.String("to", string(r.Status)))
	s.publish(ctx, events.New(events.ReservationStatusChanged, r.ID, map[string]any{
		"from":  from,
		"to":    r.Status,
		"actor": actor,
	}))
}
