package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/availability"
	"restaurant-ordering-api/models"

	"gorm.io/gorm"
)

type TableService struct {
	base
	strictOverlap bool
}

type TableFilter struct {
	Date      string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Time      string `form:"time" binding:"omitempty,clock"`
	PartySize int    `form:"partySize" binding:"omitempty,min=1"`
}

type TableInput struct {
	TableNumber  string               `json:"tableNumber" binding:"required"`
	Capacity     int                  `json:"capacity" binding:"required,min=1,max=20"`
	Location     models.TableLocation `json:"location" binding:"omitempty,oneof=indoor outdoor private bar window"`
	IsAvailable  *bool                `json:"isAvailable"`
	Amenities    []string             `json:"amenities"`
	PricePerHour float64              `json:"pricePerHour" binding:"gte=0"`
	Description  string               `json:"description"`
}

// AvailabilityGrid is the per-table slot map for one date.
type AvailabilityGrid struct {
	Date         string                   `json:"date"`
	Tables       []models.Table           `json:"tables"`
	Availability map[uint]map[string]bool `json:"availability"`
	TimeSlots    []string                 `json:"timeSlots"`
}

// List returns in-service tables, optionally only those free at date+time
// and large enough for the party.
func (s *TableService) List(ctx context.Context, f TableFilter) ([]models.Table, error) {
	q := s.db.WithContext(ctx).Where("is_available = ?", true)
	if f.PartySize > 0 {
		q = q.Where("capacity >= ?", f.PartySize)
	}
	var tables []models.Table
	if err := q.Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	if f.Date == "" || f.Time == "" {
		return tables, nil
	}

	holding, err := holdingBookings(s.db.WithContext(ctx), f.Date, 0)
	if err != nil {
		return nil, err
	}
	free := tables[:0]
	for _, t := range tables {
		candidate := availability.Booking{TableID: t.ID, Time: f.Time, Duration: models.DefaultReservationHours}
		if !availability.Conflicts(candidate, holding, s.strictOverlap) {
			free = append(free, t)
		}
	}
	return free, nil
}

// Availability builds the slot grid for date over every in-service table.
func (s *TableService) Availability(ctx context.Context, date string) (*AvailabilityGrid, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, apperr.BadRequest("Invalid date %q, expected YYYY-MM-DD", date)
	}
	var tables []models.Table
	if err := s.db.WithContext(ctx).Where("is_available = ?", true).Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	holding, err := holdingBookings(s.db.WithContext(ctx), date, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	return &AvailabilityGrid{
		Date:         date,
		Tables:       tables,
		Availability: availability.Grid(ids, holding),
		TimeSlots:    availability.Slots,
	}, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	err := s.db.WithContext(ctx).First(&table, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Table not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	return &table, nil
}

func (s *TableService) Create(ctx context.Context, in TableInput) (*models.Table, error) {
	table := models.Table{IsAvailable: true, Location: models.LocationIndoor}
	in.applyTo(&table)
	if err := s.ensureNumberFree(ctx, table.TableNumber, 0); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &table, nil
}

func (s *TableService) Update(ctx context.Context, id uint, in TableInput) (*models.Table, error) {
	table, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(table)
	if err := s.ensureNumberFree(ctx, table.TableNumber, table.ID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(table).Error; err != nil {
		return nil, fmt.Errorf("update table: %w", err)
	}
	return table, nil
}

// Delete removes a table nobody has booked or ordered at. Tables with
// history are taken out of service instead.
func (s *TableService) Delete(ctx context.Context, id uint) error {
	table, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	var refs int64
	if err := db.Model(&models.Reservation{}).Where("table_id = ?", id).Count(&refs).Error; err != nil {
		return fmt.Errorf("check table reservations: %w", err)
	}
	if refs == 0 {
		if err := db.Model(&models.Order{}).Where("table_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("check table orders: %w", err)
		}
	}
	if refs > 0 {
		return apperr.BadRequest("Table %s has reservation or order history; mark it unavailable instead", table.TableNumber)
	}
	if err := db.Delete(table).Error; err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	return nil
}

func (s *TableService) ensureNumberFree(ctx context.Context, number string, self uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Table{}).
		Where("table_number = ? AND id <> ?", number, self).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check table number: %w", err)
	}
	if count > 0 {
		return apperr.BadRequest("Table number %s already exists", number)
	}
	return nil
}

func (in TableInput) applyTo(t *models.Table) {
	t.TableNumber = strings.TrimSpace(in.TableNumber)
	t.Capacity = in.Capacity
	if in.Location != "" {
		t.Location = in.Location
	}
	if in.IsAvailable != nil {
		t.IsAvailable = *in.IsAvailable
	}
	t.Amenities = in.Amenities
	t.PricePerHour = in.PricePerHour
	t.Description = in.Description
}
