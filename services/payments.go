package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/events"
	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/payments"
	"restaurant-ordering-api/pricing"
	"restaurant-ordering-api/statemachine"

	"gorm.io/gorm"
)

const gatewayCurrency = "usd"

type PaymentService struct {
	base
	gateway payments.Gateway
}

type CreateIntentInput struct {
	OrderID       uint                 `json:"orderId" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=stripe credit_card debit_card digital_wallet cash"`
}

type ConfirmInput struct {
	PaymentID uint `json:"paymentId" binding:"required"`
}

type RefundInput struct {
	PaymentID    uint     `json:"paymentId" binding:"required"`
	RefundAmount *float64 `json:"refundAmount" binding:"omitempty,gt=0"`
	RefundReason string   `json:"refundReason"`
}

// Intent is a freshly opened payment plus the secret the client needs to
// finish it with the gateway. ClientSecret is empty for cash.
type Intent struct {
	Payment      *models.Payment
	ClientSecret string
}

// CreateIntent opens a pending payment for the caller's order. Card methods
// go through the gateway; cash is only accepted for pickup and dine-in.
func (s *PaymentService) CreateIntent(ctx context.Context, customerID uint, in CreateIntentInput) (*Intent, error) {
	method := in.PaymentMethod
	if method == "" {
		method = models.MethodStripe
	}

	order, err := s.order(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, apperr.Forbidden("Not authorized to pay for this order")
	}
	if order.PaymentStatus == models.OrderPaymentPaid {
		return nil, apperr.BadRequest("Order is already paid")
	}
	if order.Status == models.OrderCancelled {
		return nil, apperr.BadRequest("Cannot pay for a cancelled order")
	}

	payment := models.Payment{
		OrderID:       order.ID,
		CustomerID:    customerID,
		Amount:        order.Total,
		Currency:      "USD",
		PaymentMethod: method,
		Status:        models.PaymentPending,
	}
	var secret string

	if method == models.MethodCash {
		if order.OrderType == models.OrderTypeDelivery {
			return nil, apperr.BadRequest("Cash payment not available for delivery orders")
		}
		payment.PaymentGateway = models.GatewayCash
	} else {
		if s.gateway == nil {
			return nil, apperr.New(http.StatusServiceUnavailable, "Card payments are not available")
		}
		intent, err := s.gateway.CreateIntent(ctx, pricing.MinorUnits(order.Total), gatewayCurrency, map[string]string{
			"orderId":     strconv.FormatUint(uint64(order.ID), 10),
			"orderNumber": order.OrderNumber,
			"customerId":  strconv.FormatUint(uint64(customerID), 10),
		})
		if err != nil {
			return nil, fmt.Errorf("create payment intent: %w", err)
		}
		payment.PaymentGateway = models.GatewayStripe
		payment.TransactionID = &intent.ID
		payment.GatewayStatus = intent.Status
		secret = intent.ClientSecret
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	s.log.Info("payment_intent_created", logger.RequestIDFrom(ctx), "payment opened",
		slog.Uint64("payment_id", uint64(payment.ID)),
		slog.String("order_number", order.OrderNumber),
		slog.String("method", string(method)))

	return &Intent{Payment: &payment, ClientSecret: secret}, nil
}

// Confirm settles a pending payment. Gateway payments are re-verified with
// the gateway and only "succeeded" completes them; anything else fails
// them. Cash confirmation is taken on trust.
func (s *PaymentService) Confirm(ctx context.Context, customerID uint, in ConfirmInput) (*models.Payment, error) {
	payment, err := s.payment(ctx, in.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.CustomerID != customerID {
		return nil, apperr.Forbidden("Not authorized to confirm this payment")
	}
	if statemachine.Payment.IsTerminal(payment.Status) || payment.Status == models.PaymentCompleted {
		return nil, apperr.BadRequest("Payment is already %s", payment.Status)
	}
	order, err := s.order(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.OrderPaymentPaid {
		return nil, apperr.BadRequest("Order is already paid")
	}

	succeeded := true
	gatewayStatus := ""
	if payment.PaymentGateway == models.GatewayStripe {
		if s.gateway == nil {
			return nil, apperr.New(http.StatusServiceUnavailable, "Card payments are not available")
		}
		if payment.TransactionID == nil {
			return nil, apperr.BadRequest("Payment has no gateway transaction")
		}
		intent, err := s.gateway.RetrieveIntent(ctx, *payment.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("retrieve payment intent: %w", err)
		}
		gatewayStatus = intent.Status
		succeeded = intent.Status == payments.IntentSucceeded
	}

	now := s.now()
	from := payment.Status
	orderConfirmed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !succeeded {
			if err := movePayment(tx, payment, models.PaymentFailed, map[string]any{
				"gateway_status": gatewayStatus,
				"failure_reason": "Payment not completed (gateway status: " + gatewayStatus + ")",
			}); err != nil {
				return err
			}
			return tx.Model(order).Update("payment_status", models.OrderPaymentFailed).Error
		}

		if err := movePayment(tx, payment, models.PaymentCompleted, map[string]any{
			"gateway_status": gatewayStatus,
			"processed_at":   now,
		}); err != nil {
			return err
		}
		if err := tx.Model(order).Update("payment_status", models.OrderPaymentPaid).Error; err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if order.Status != models.OrderPending {
			return nil
		}
		if err := moveOrder(tx, order, models.OrderConfirmed, statemachine.ActorSystem, nil, "Payment received", now); err != nil {
			return err
		}
		orderConfirmed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment, err = s.payment(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	eventType := events.PaymentCompleted
	if !succeeded {
		eventType = events.PaymentFailed
	}
	s.log.Info("payment_confirmed", logger.RequestIDFrom(ctx), "payment settled",
		slog.Uint64("payment_id", uint64(payment.ID)),
		slog.String("from", string(from)),
		slog.String("to", string(payment.Status)))
	s.publish(ctx, events.New(eventType, payment.ID, map[string]any{
		"orderId":     payment.OrderID,
		"orderNumber": order.OrderNumber,
		"amount":      payment.Amount,
		"method":      payment.PaymentMethod,
	}))
	if orderConfirmed {
		s.publish(ctx, events.New(events.OrderStatusChanged, order.ID, map[string]any{
			"orderNumber": order.OrderNumber,
			"from":        models.OrderPending,
			"to":          models.OrderConfirmed,
			"actor":       statemachine.ActorSystem,
		}))
	}
	return payment, nil
}

// Refund returns money on a completed payment. The gateway is called before
// the transaction; a storage failure after that is logged with the refund id.
func (s *PaymentService) Refund(ctx context.Context, in RefundInput) (*models.Payment, error) {
	payment, err := s.payment(ctx, in.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentCompleted {
		return nil, apperr.BadRequest("Payment cannot be refunded (status: %s)", payment.Status)
	}
	amount := payment.Amount
	if in.RefundAmount != nil {
		amount = pricing.Round2(*in.RefundAmount)
	}
	if amount <= 0 || pricing.MinorUnits(amount) > pricing.MinorUnits(payment.Amount) {
		return nil, apperr.BadRequest("Refund amount must be between 0 and %.2f", payment.Amount)
	}

	refundID := ""
	if payment.PaymentGateway == models.GatewayStripe {
		if s.gateway == nil {
			return nil, apperr.New(http.StatusServiceUnavailable, "Card payments are not available")
		}
		if payment.TransactionID == nil {
			return nil, apperr.BadRequest("Payment has no gateway transaction")
		}
		refund, err := s.gateway.Refund(ctx, *payment.TransactionID, pricing.MinorUnits(amount))
		if err != nil {
			return nil, fmt.Errorf("issue refund: %w", err)
		}
		refundID = refund.ID
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := movePayment(tx, payment, models.PaymentRefunded, map[string]any{
			"refund_amount": amount,
			"refund_reason": in.RefundReason,
			"refund_id":     refundID,
			"refunded_at":   now,
		}); err != nil {
			return err
		}
		err := tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).
			Update("payment_status", models.OrderPaymentRefunded).Error
		if err != nil {
			return fmt.Errorf("mark order refunded: %w", err)
		}
		return nil
	})
	if err != nil {
		if refundID != "" {
			s.log.Error("refund_record_failed", logger.RequestIDFrom(ctx), "gateway refund issued but not recorded", err,
				slog.Uint64("payment_id", uint64(payment.ID)),
				slog.String("refund_id", refundID))
		}
		return nil, err
	}

	s.log.Info("payment_refunded", logger.RequestIDFrom(ctx), "refund processed",
		slog.Uint64("payment_id", uint64(payment.ID)),
		slog.Float64("amount", amount))
	s.publish(ctx, events.New(events.PaymentRefunded, payment.ID, map[string]any{
		"orderId": payment.OrderID,
		"amount":  amount,
		"reason":  in.RefundReason,
	}))
	return s.payment(ctx, payment.ID)
}

// Get returns the payment only to the customer who made it.
func (s *PaymentService) Get(ctx context.Context, id, customerID uint) (*models.Payment, error) {
	payment, err := s.payment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.CustomerID != customerID {
		return nil, apperr.Forbidden("Not authorized to view this payment")
	}
	return payment, nil
}

func (s *PaymentService) History(ctx context.Context, customerID uint, p Page) ([]models.Payment, PageInfo, error) {
	page := p.normalize()
	q := s.db.WithContext(ctx).Model(&models.Payment{}).Where("customer_id = ?", customerID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, PageInfo{}, fmt.Errorf("count payments: %w", err)
	}
	var list []models.Payment
	err := page.apply(q).Preload("Order").Order("created_at DESC").Order("id DESC").Find(&list).Error
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("list payments: %w", err)
	}
	return list, pageInfo(page, total), nil
}

func (s *PaymentService) payment(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Preload("Order").First(&payment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	return &payment, nil
}

func (s *PaymentService) order(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

// movePayment is the payment counterpart of moveOrder. Refunds are an
// admin move; settlement is the system's.
func movePayment(tx *gorm.DB, payment *models.Payment, to models.PaymentStatus, fields map[string]any) error {
	actor := statemachine.ActorSystem
	if to == models.PaymentRefunded {
		actor = statemachine.ActorAdmin
	}
	if err := statemachine.Payment.CanTransition(payment.Status, to, actor); err != nil {
		return apperr.BadRequest("%s", err.Error())
	}
	fields["status"] = to
	res := tx.Model(&models.Payment{}).Where("id = ? AND status = ?", payment.ID, payment.Status).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update payment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("Payment %d was changed by another request, reload and retry", payment.ID)
	}
	payment.Status = to
	return nil
}
