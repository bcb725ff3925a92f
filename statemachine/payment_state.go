package statemachine

import "restaurant-ordering-api/models"

// Payment moves are driven by gateway results (system) and refunds (admin).
var Payment = newMachine("payment",
	[]models.PaymentStatus{
		models.PaymentPending, models.PaymentProcessing, models.PaymentCompleted,
		models.PaymentFailed, models.PaymentCancelled, models.PaymentRefunded,
	},
	concat(
		allow(models.PaymentPending, models.PaymentProcessing, ActorSystem),
		allow(models.PaymentPending, models.PaymentCompleted, ActorSystem),
		allow(models.PaymentProcessing, models.PaymentCompleted, ActorSystem),
		allow(models.PaymentPending, models.PaymentFailed, ActorSystem),
		allow(models.PaymentProcessing, models.PaymentFailed, ActorSystem),
		allow(models.PaymentPending, models.PaymentCancelled, ActorCustomer, ActorAdmin, ActorSystem),
		allow(models.PaymentProcessing, models.PaymentCancelled, ActorCustomer, ActorAdmin, ActorSystem),
		allow(models.PaymentCompleted, models.PaymentRefunded, ActorAdmin),
	),
)
