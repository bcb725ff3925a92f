package pricing

import (
	"testing"
	"time"

	"restaurant-ordering-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteOrder(t *testing.T) {
	tests := []struct {
		name      string
		lines     []Line
		orderType models.OrderType
		tip       float64
		want      Quote
		wantErr   error
	}{
		{
			name:      "delivery adds flat fee",
			lines:     []Line{{UnitPrice: 12.99, Quantity: 1}, {UnitPrice: 3.99, Quantity: 2}},
			orderType: models.OrderTypeDelivery,
			tip:       2,
			want:      Quote{Subtotal: 20.97, DeliveryFee: 5.99, Tax: 1.68, Tip: 2, Total: 30.64},
		},
		{
			name:      "pickup has no fee",
			lines:     []Line{{UnitPrice: 8.99, Quantity: 1}},
			orderType: models.OrderTypePickup,
			want:      Quote{Subtotal: 8.99, Tax: 0.72, Total: 9.71},
		},
		{
			name:      "delivery minimum is inclusive",
			lines:     []Line{{UnitPrice: 7.50, Quantity: 2}},
			orderType: models.OrderTypeDelivery,
			want:      Quote{Subtotal: 15, DeliveryFee: 5.99, Tax: 1.2, Total: 22.19},
		},
		{
			name:      "delivery below minimum",
			lines:     []Line{{UnitPrice: 14.99, Quantity: 1}},
			orderType: models.OrderTypeDelivery,
			wantErr:   ErrBelowDeliveryMinimum,
		},
		{
			name:      "dine-in below minimum is fine",
			lines:     []Line{{UnitPrice: 3.99, Quantity: 1}},
			orderType: models.OrderTypeDineIn,
			want:      Quote{Subtotal: 3.99, Tax: 0.32, Total: 4.31},
		},
		{
			name:      "empty cart",
			orderType: models.OrderTypePickup,
			wantErr:   ErrNoItems,
		},
		{
			name:      "negative tip",
			lines:     []Line{{UnitPrice: 3.99, Quantity: 1}},
			orderType: models.OrderTypePickup,
			tip:       -1,
			wantErr:   ErrNegativeTip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuoteOrder(tt.lines, tt.orderType, tt.tip)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, got.Subtotal+got.DeliveryFee+got.Tax+got.Tip, got.Total, 1e-9)
		})
	}
}

func TestBelowMinimumMessage(t *testing.T) {
	assert.Equal(t, "Minimum order amount for delivery is $15.00", ErrBelowDeliveryMinimum.Error())
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(3064), MinorUnits(30.64))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(0), MinorUnits(0))
	assert.Equal(t, 30.64, FromMinorUnits(3064))
	assert.Equal(t, 1.01, Round2(1.005))
}

func TestHaversine(t *testing.T) {
	p := Point{Lat: 40.7128, Lng: -74.0060}
	assert.Zero(t, Haversine(p, p))

	// New York to Los Angeles is roughly 3936 km
	la := Point{Lat: 34.0522, Lng: -118.2437}
	assert.InDelta(t, 3936, Haversine(p, la), 5)
	assert.InDelta(t, Haversine(p, la), Haversine(la, p), 1e-9)
}

func TestDistanceFeeTiers(t *testing.T) {
	tests := []struct {
		km   float64
		want float64
	}{
		{0, 2.99},
		{2.0, 2.99},
		{2.01, 4.99},
		{5.0, 4.99},
		{5.5, 6.99},
		{10.0, 6.99},
		{10.01, 8.99},
		{42, 8.99},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DistanceFee(tt.km), "%v km", tt.km)
	}
}

func TestEstimate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEstimator(Point{Lat: 40.7128, Lng: -74.0060})
	e.Now = func() time.Time { return now }

	same := e.Estimate(e.Origin)
	assert.Zero(t, same.Distance)
	assert.Equal(t, 20, same.EstimatedTime)
	assert.Equal(t, 2.99, same.DeliveryFee)
	assert.Equal(t, now.Add(20*time.Minute), same.EstimatedDeliveryTime)

	// one degree of latitude is about 111.19 km
	far := e.Estimate(Point{Lat: 41.7128, Lng: -74.0060})
	assert.InDelta(t, 111.19, far.Distance, 0.01)
	assert.Equal(t, 242, far.EstimatedTime)
	assert.Equal(t, 8.99, far.DeliveryFee)
}

func TestPromisedTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(45*time.Minute), PromisedTime(now, "delivery", nil))
	assert.Equal(t, now.Add(25*time.Minute), PromisedTime(now, "pickup", nil))

	scheduled := now.Add(3 * time.Hour)
	assert.Equal(t, scheduled, PromisedTime(now, "delivery", &scheduled))
}
