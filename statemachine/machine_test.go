package statemachine

import (
	"testing"

	"restaurant-ordering-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCancellation(t *testing.T) {
	cancellable := []models.OrderStatus{
		models.OrderPending, models.OrderConfirmed, models.OrderPreparing,
		models.OrderReady, models.OrderOutForDelivery,
	}
	for _, from := range cancellable {
		assert.NoError(t, Order.CanTransition(from, models.OrderCancelled, ActorCustomer), from)
	}

	for _, from := range []models.OrderStatus{models.OrderDelivered, models.OrderCancelled} {
		err := Order.CanTransition(from, models.OrderCancelled, ActorCustomer)
		require.Error(t, err, from)
		var terr *TransitionError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "none (terminal state)", terr.Valid)
		assert.True(t, Order.IsTerminal(from))
	}
}

func TestOrderForwardFlow(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		actor    Actor
		ok       bool
	}{
		{models.OrderPending, models.OrderConfirmed, ActorAdmin, true},
		{models.OrderPending, models.OrderConfirmed, ActorSystem, true},
		{models.OrderPending, models.OrderConfirmed, ActorCustomer, false},
		{models.OrderConfirmed, models.OrderPreparing, ActorAdmin, true},
		{models.OrderPreparing, models.OrderReady, ActorAdmin, true},
		{models.OrderReady, models.OrderOutForDelivery, ActorSystem, true},
		{models.OrderReady, models.OrderDelivered, ActorAdmin, true},
		{models.OrderOutForDelivery, models.OrderDelivered, ActorSystem, true},
		{models.OrderPending, models.OrderDelivered, ActorAdmin, false},
		{models.OrderDelivered, models.OrderPending, ActorAdmin, false},
		{models.OrderPreparing, models.OrderConfirmed, ActorAdmin, false},
	}
	for _, tt := range tests {
		err := Order.CanTransition(tt.from, tt.to, tt.actor)
		if tt.ok {
			assert.NoError(t, err, "%s -> %s by %s", tt.from, tt.to, tt.actor)
		} else {
			assert.Error(t, err, "%s -> %s by %s", tt.from, tt.to, tt.actor)
		}
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	err := Order.CanTransition(models.OrderPending, models.OrderReady, ActorAdmin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order transition: pending → ready")
	assert.Contains(t, err.Error(), "confirmed, cancelled")
}

func TestReservationTable(t *testing.T) {
	assert.NoError(t, Reservation.CanTransition(models.ReservationPending, models.ReservationConfirmed, ActorAdmin))
	assert.NoError(t, Reservation.CanTransition(models.ReservationConfirmed, models.ReservationSeated, ActorAdmin))
	assert.NoError(t, Reservation.CanTransition(models.ReservationSeated, models.ReservationCompleted, ActorAdmin))
	assert.NoError(t, Reservation.CanTransition(models.ReservationSeated, models.ReservationCancelled, ActorCustomer))
	assert.Error(t, Reservation.CanTransition(models.ReservationPending, models.ReservationConfirmed, ActorCustomer))
	assert.Error(t, Reservation.CanTransition(models.ReservationCompleted, models.ReservationCancelled, ActorCustomer))
	assert.Error(t, Reservation.CanTransition(models.ReservationCancelled, models.ReservationCancelled, ActorAdmin))
	assert.Error(t, Reservation.CanTransition(models.ReservationNoShow, models.ReservationCancelled, ActorCustomer))

	for _, s := range []models.ReservationStatus{models.ReservationCompleted, models.ReservationCancelled, models.ReservationNoShow} {
		assert.True(t, Reservation.IsTerminal(s), s)
	}
}

func TestPaymentTable(t *testing.T) {
	assert.NoError(t, Payment.CanTransition(models.PaymentPending, models.PaymentCompleted, ActorSystem))
	assert.NoError(t, Payment.CanTransition(models.PaymentProcessing, models.PaymentFailed, ActorSystem))
	assert.NoError(t, Payment.CanTransition(models.PaymentCompleted, models.PaymentRefunded, ActorAdmin))

	for _, from := range []models.PaymentStatus{models.PaymentPending, models.PaymentFailed, models.PaymentRefunded, models.PaymentProcessing} {
		assert.Error(t, Payment.CanTransition(from, models.PaymentRefunded, ActorAdmin), from)
	}
}

func TestDeliveryIsForwardOnly(t *testing.T) {
	assert.NoError(t, Delivery.CanTransition(models.DeliveryAssigned, models.DeliveryPickedUp, ActorDriver))
	assert.NoError(t, Delivery.CanTransition(models.DeliveryAssigned, models.DeliveryDelivered, ActorAdmin))
	assert.NoError(t, Delivery.CanTransition(models.DeliveryOnTheWay, models.DeliveryNearby, ActorDriver))
	assert.Error(t, Delivery.CanTransition(models.DeliveryNearby, models.DeliveryPickedUp, ActorDriver))
	assert.Error(t, Delivery.CanTransition(models.DeliveryPickedUp, models.DeliveryPickedUp, ActorDriver))
	assert.Error(t, Delivery.CanTransition(models.DeliveryAssigned, models.DeliveryPickedUp, ActorCustomer))
	assert.True(t, Delivery.IsTerminal(models.DeliveryDelivered))

	assert.Equal(t,
		[]models.DeliveryStatus{models.DeliveryOnTheWay, models.DeliveryNearby, models.DeliveryDelivered},
		Delivery.ValidTransitionsFrom(models.DeliveryPickedUp))
}

func TestIsValid(t *testing.T) {
	assert.True(t, Order.IsValid(models.OrderOutForDelivery))
	assert.False(t, Order.IsValid("shipped"))
	assert.True(t, Reservation.IsValid(models.ReservationNoShow))
}

func TestTerminalStates(t *testing.T) {
	assert.ElementsMatch(t, []models.OrderStatus{models.OrderDelivered, models.OrderCancelled}, Order.TerminalStates())
	assert.ElementsMatch(t, []models.ReservationStatus{
		models.ReservationCompleted, models.ReservationCancelled, models.ReservationNoShow,
	}, Reservation.TerminalStates())
	assert.ElementsMatch(t, []models.DeliveryStatus{models.DeliveryDelivered}, Delivery.TerminalStates())
}
