package models

import "time"

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodCreditCard    PaymentMethod = "credit_card"
	MethodDebitCard     PaymentMethod = "debit_card"
	MethodStripe        PaymentMethod = "stripe"
	MethodDigitalWallet PaymentMethod = "digital_wallet"
	MethodCash          PaymentMethod = "cash"
)

const (
	GatewayStripe = "stripe"
	GatewayCash   = "cash"
)

// Payment.TransactionID is nil for cash payments so the unique index ignores them.
type Payment struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	OrderID        uint          `json:"orderId" gorm:"index;not null"`
	Order          *Order        `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	CustomerID     uint          `json:"customerId" gorm:"index;not null"`
	Amount         float64       `json:"amount" gorm:"not null"`
	Currency       string        `json:"currency" gorm:"default:'USD'"`
	PaymentMethod  PaymentMethod `json:"paymentMethod" gorm:"not null"`
	PaymentGateway string        `json:"paymentGateway"`
	Status         PaymentStatus `json:"paymentStatus" gorm:"index;not null;default:'pending'"`
	TransactionID  *string       `json:"transactionId,omitempty" gorm:"uniqueIndex"`
	GatewayStatus  string        `json:"gatewayStatus,omitempty"`
	RefundAmount   float64       `json:"refundAmount" gorm:"default:0"`
	RefundReason   string        `json:"refundReason,omitempty"`
	RefundID       string        `json:"refundId,omitempty"`
	FailureReason  string        `json:"failureReason,omitempty"`
	ProcessedAt    *time.Time    `json:"processedAt,omitempty"`
	RefundedAt     *time.Time    `json:"refundedAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}
