package statemachine

import (
	"restaurant-ordering-api/models"
)

// Order is the authoritative order lifecycle
var Order = newMachine("order",
	[]models.OrderStatus{
		models.OrderPending, models.OrderConfirmed, models.OrderPreparing, models.OrderReady,
		models.OrderOutForDelivery, models.OrderDelivered, models.OrderCancelled,
	},
	concat(
		// Kitchen confirms, or a completed payment confirms it automatically
		allow(models.OrderPending, models.OrderConfirmed, ActorAdmin, ActorSystem),
		allow(models.OrderConfirmed, models.OrderPreparing, ActorAdmin),
		allow(models.OrderPreparing, models.OrderReady, ActorAdmin),
		// Dispatch happens when a delivery tracking record is created
		allow(models.OrderReady, models.OrderOutForDelivery, ActorAdmin, ActorSystem),
		// Pickup and dine-in orders are handed over straight from ready
		allow(models.OrderReady, models.OrderDelivered, ActorAdmin),
		allow(models.OrderOutForDelivery, models.OrderDelivered, ActorAdmin, ActorSystem),
		// Customer or admin can cancel anything not yet finished
		allow(models.OrderPending, models.OrderCancelled, ActorCustomer, ActorAdmin),
		allow(models.OrderConfirmed, models.OrderCancelled, ActorCustomer, ActorAdmin),
		allow(models.OrderPreparing, models.OrderCancelled, ActorCustomer, ActorAdmin),
		allow(models.OrderReady, models.OrderCancelled, ActorCustomer, ActorAdmin),
		allow(models.OrderOutForDelivery, models.OrderCancelled, ActorCustomer, ActorAdmin),
	),
)

func concat[T any](groups ...[]T) []T {
	var out []T
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
