package models

import "time"

type DeliveryStatus string

const (
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryPickedUp  DeliveryStatus = "picked_up"
	DeliveryOnTheWay  DeliveryStatus = "on_the_way"
	DeliveryNearby    DeliveryStatus = "nearby"
	DeliveryDelivered DeliveryStatus = "delivered"
)

type DeliveryTracking struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	OrderID               uint           `json:"orderId" gorm:"uniqueIndex;not null"`
	Order                 *Order         `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	DriverID              *uint          `json:"driverId,omitempty"`
	Driver                DriverSnapshot `json:"driver" gorm:"embedded;embeddedPrefix:driver_"`
	Status                DeliveryStatus `json:"status" gorm:"index;not null;default:'assigned'"`
	EstimatedDeliveryTime time.Time      `json:"estimatedDeliveryTime"`
	ActualDeliveryTime    *time.Time     `json:"actualDeliveryTime,omitempty"`
	CurrentLocation       Location       `json:"currentLocation" gorm:"embedded;embeddedPrefix:current_"`
	Route                 []RoutePoint   `json:"deliveryRoute,omitempty" gorm:"foreignKey:TrackingID"`
	DeliveryInstructions  string         `json:"deliveryInstructions,omitempty"`
	DeliveryNotes         string         `json:"deliveryNotes,omitempty"`
	CustomerRating        *int           `json:"customerRating,omitempty"`
	DeliveryFeedback      string         `json:"deliveryFeedback,omitempty"`
	IsContactless         bool           `json:"isContactlessDelivery"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt" gorm:"index"`
}

// DriverSnapshot copies the driver's details at assignment time.
type DriverSnapshot struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	VehicleType   string `json:"vehicleType,omitempty"`
	VehicleNumber string `json:"vehicleNumber,omitempty"`
}

type Location struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Address     string    `json:"address,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type RoutePoint struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	TrackingID uint      `json:"-" gorm:"index;not null"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Timestamp  time.Time `json:"timestamp"`
}
