package pricing

import (
	"math"
	"time"

	"restaurant-ordering-api/models"
)

const (
	EarthRadiusKm      = 6371.0
	BasePrepMinutes    = 20.0
	AverageSpeedKmh    = 30.0
	deliveryLeadTime   = 45 * time.Minute
	collectionLeadTime = 25 * time.Minute
)

type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Haversine returns the great-circle distance in kilometres.
func Haversine(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceFee is the tiered fee shown by the delivery estimator. Tier
// boundaries are inclusive.
func DistanceFee(km float64) float64 {
	switch {
	case km <= 2:
		return 2.99
	case km <= 5:
		return 4.99
	case km <= 10:
		return 6.99
	default:
		return 8.99
	}
}

type Estimate struct {
	Distance              float64   `json:"distance"`      // km, 2 decimals
	EstimatedTime         int       `json:"estimatedTime"` // minutes
	DeliveryFee           float64   `json:"deliveryFee"`
	EstimatedDeliveryTime time.Time `json:"estimatedDeliveryTime"`
}

// Estimator answers distance, time and fee questions relative to the
// restaurant's location.
type Estimator struct {
	Origin Point
	Now    func() time.Time
}

func NewEstimator(origin Point) *Estimator {
	return &Estimator{Origin: origin, Now: func() time.Time { return time.Now().UTC() }}
}

func (e *Estimator) Estimate(dest Point) Estimate {
	km := Haversine(e.Origin, dest)
	minutes := BasePrepMinutes + km/AverageSpeedKmh*60
	return Estimate{
		Distance:              math.Round(km*100) / 100,
		EstimatedTime:         int(math.Round(minutes)),
		DeliveryFee:           DistanceFee(km),
		EstimatedDeliveryTime: e.Now().Add(time.Duration(minutes * float64(time.Minute))),
	}
}

// PromisedTime is when an order should be ready for the customer. A
// scheduled time wins over the default lead time.
func PromisedTime(now time.Time, orderType models.OrderType, scheduledFor *time.Time) time.Time {
	if scheduledFor != nil {
		return scheduledFor.UTC()
	}
	if orderType == models.OrderTypeDelivery {
		return now.Add(deliveryLeadTime)
	}
	return now.Add(collectionLeadTime)
}
