package statemachine

import "restaurant-ordering-api/models"

var Reservation = newMachine("reservation",
	[]models.ReservationStatus{
		models.ReservationPending, models.ReservationConfirmed, models.ReservationSeated,
		models.ReservationCompleted, models.ReservationCancelled, models.ReservationNoShow,
	},
	concat(
		allow(models.ReservationPending, models.ReservationConfirmed, ActorAdmin),
		allow(models.ReservationConfirmed, models.ReservationSeated, ActorAdmin),
		allow(models.ReservationSeated, models.ReservationCompleted, ActorAdmin),

		allow(models.ReservationPending, models.ReservationCancelled, ActorCustomer, ActorAdmin),
		allow(models.ReservationConfirmed, models.ReservationCancelled, ActorCustomer, ActorAdmin),
		allow(models.ReservationSeated, models.ReservationCancelled, ActorCustomer, ActorAdmin),

		allow(models.ReservationPending, models.ReservationNoShow, ActorAdmin),
		allow(models.ReservationConfirmed, models.ReservationNoShow, ActorAdmin),
		allow(models.ReservationSeated, models.ReservationNoShow, ActorAdmin),
	),
)
