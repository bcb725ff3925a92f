package statemachine

import "restaurant-ordering-api/models"

var deliveryStates = []models.DeliveryStatus{
	models.DeliveryAssigned, models.DeliveryPickedUp, models.DeliveryOnTheWay,
	models.DeliveryNearby, models.DeliveryDelivered,
}

// Delivery only moves forward; drivers may skip intermediate steps.
var Delivery = newMachine("delivery", deliveryStates, forwardOnly(deliveryStates, ActorDriver, ActorAdmin))

func forwardOnly[S ~string](states []S, actors ...Actor) []Transition[S] {
	var out []Transition[S]
	for i := range states {
		for j := i + 1; j < len(states); j++ {
			out = append(out, allow(states[i], states[j], actors...)...)
		}
	}
	return out
}
