package models

import "time"

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderReady          OrderStatus = "ready"
	OrderOutForDelivery OrderStatus = "out-for-delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDineIn   OrderType = "dine-in"
)

// OrderPaymentStatus is the coarse payment state mirrored onto an order.
type OrderPaymentStatus string

const (
	OrderPaymentPending  OrderPaymentStatus = "pending"
	OrderPaymentPaid     OrderPaymentStatus = "paid"
	OrderPaymentFailed   OrderPaymentStatus = "failed"
	OrderPaymentRefunded OrderPaymentStatus = "refunded"
)

type Order struct {
	ID                    uint                 `json:"id" gorm:"primaryKey"`
	OrderNumber           string               `json:"orderNumber" gorm:"uniqueIndex;not null"`
	CustomerID            uint                 `json:"customerId" gorm:"index;not null"`
	Customer              *User                `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items                 []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	OrderType             OrderType            `json:"orderType" gorm:"not null"`
	Status                OrderStatus          `json:"status" gorm:"index;not null;default:'pending'"`
	PaymentStatus         OrderPaymentStatus   `json:"paymentStatus" gorm:"not null;default:'pending'"`
	Subtotal              float64              `json:"subtotal" gorm:"not null"`
	DeliveryFee           float64              `json:"deliveryFee" gorm:"default:0"`
	Tax                   float64              `json:"tax" gorm:"not null"`
	Tip                   float64              `json:"tip" gorm:"default:0"`
	Total                 float64              `json:"total" gorm:"not null"`
	DeliveryAddress       DeliveryAddress      `json:"deliveryAddress" gorm:"embedded;embeddedPrefix:delivery_"`
	EstimatedDeliveryTime time.Time            `json:"estimatedDeliveryTime"`
	ActualDeliveryTime    *time.Time           `json:"actualDeliveryTime,omitempty"`
	ScheduledFor          *time.Time           `json:"scheduledFor,omitempty"`
	CustomerNotes         string               `json:"customerNotes"`
	RestaurantNotes       string               `json:"restaurantNotes"`
	AssignedDriverID      *uint                `json:"assignedDriverId,omitempty"`
	AssignedDriver        *User                `json:"assignedDriver,omitempty" gorm:"foreignKey:AssignedDriverID"`
	TableID               *uint                `json:"tableId,omitempty"`
	Table                 *Table               `json:"table,omitempty" gorm:"foreignKey:TableID"`
	ReservationID         *uint                `json:"reservationId,omitempty"`
	StatusHistory         []OrderStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt             time.Time            `json:"createdAt" gorm:"index"`
	UpdatedAt             time.Time            `json:"updatedAt"`
}

type DeliveryAddress struct {
	Street               string   `json:"street"`
	City                 string   `json:"city"`
	State                string   `json:"state"`
	ZipCode              string   `json:"zipCode"`
	Country              string   `json:"country"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	DeliveryInstructions string   `json:"deliveryInstructions,omitempty"`
}

type OrderItem struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	OrderID             uint      `json:"orderId" gorm:"index;not null"`
	MenuItemID          uint      `json:"menuItemId" gorm:"not null"`
	MenuItem            *MenuItem `json:"menuItem,omitempty" gorm:"foreignKey:MenuItemID"`
	Name                string    `json:"name"`                  // snapshot name
	Quantity            int       `json:"quantity" gorm:"not null"`
	Price               float64   `json:"price" gorm:"not null"` // snapshot price at time of order
	SpecialInstructions string    `json:"specialInstructions,omitempty"`
}

// OrderStatusHistory records every status change of an order
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"orderId" gorm:"index;not null"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	Actor      string      `json:"actor"`
	ChangedBy  *uint       `json:"changedBy,omitempty"` // nil when the system moved it
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}
