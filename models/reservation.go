package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

// HoldingStatuses are the reservation states that occupy a table.
var HoldingStatuses = []ReservationStatus{ReservationConfirmed, ReservationSeated}

const DefaultReservationHours = 2.0

type Reservation struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	CustomerID      *uint             `json:"customerId,omitempty" gorm:"index"` // nil for guest bookings
	FirstName       string            `json:"firstName" gorm:"not null"`
	LastName        string            `json:"lastName" gorm:"not null"`
	Email           string            `json:"email" gorm:"not null"`
	Phone           string            `json:"phone" gorm:"not null"`
	Date            string            `json:"date" gorm:"index:idx_reservation_slot;not null"` // YYYY-MM-DD
	Time            string            `json:"time" gorm:"index:idx_reservation_slot;not null"` // HH:MM
	PartySize       int               `json:"partySize" gorm:"not null"`
	TableID         *uint             `json:"tableId,omitempty" gorm:"index"`
	Table           *Table            `json:"table,omitempty" gorm:"foreignKey:TableID"`
	Duration        float64           `json:"duration" gorm:"default:2"` // hours
	SpecialRequests string            `json:"specialRequests,omitempty"`
	RestaurantNotes string            `json:"restaurantNotes,omitempty"`
	Occasion        string            `json:"occasion" gorm:"default:'other'"`
	Status          ReservationStatus `json:"status" gorm:"index;not null;default:'pending'"`
	PreOrderItems   []PreOrderItem    `json:"preOrderItems,omitempty" gorm:"foreignKey:ReservationID"`
	CheckInTime     *time.Time        `json:"checkInTime,omitempty"`
	CheckOutTime    *time.Time        `json:"checkOutTime,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type PreOrderItem struct {
	ID                  uint   `json:"id" gorm:"primaryKey"`
	ReservationID       uint   `json:"-" gorm:"index;not null"`
	MenuItemID          uint   `json:"menuItemId" gorm:"not null"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}
