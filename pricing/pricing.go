// Package pricing computes order totals and delivery estimates.
package pricing

import (
	"errors"
	"fmt"

	"restaurant-ordering-api/models"

	"github.com/shopspring/decimal"
)

var (
	DeliveryMinimum = decimal.RequireFromString("15.00")
	DeliveryFlatFee = decimal.RequireFromString("5.99")
	TaxRate         = decimal.RequireFromString("0.08")

	hundred = decimal.NewFromInt(100)
)

var (
	ErrBelowDeliveryMinimum = fmt.Errorf("Minimum order amount for delivery is $%s", DeliveryMinimum.StringFixed(2))
	ErrNoItems              = errors.New("No items in order")
	ErrNegativeTip          = errors.New("Tip cannot be negative")
)

// Line is one priced cart line. UnitPrice comes from the menu, never from the client.
type Line struct {
	UnitPrice float64
	Quantity  int
}

type Quote struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Tax         float64 `json:"tax"`
	Tip         float64 `json:"tip"`
	Total       float64 `json:"total"`
}

// QuoteOrder prices a cart. Delivery orders below DeliveryMinimum are
// rejected; exactly the minimum is accepted.
func QuoteOrder(lines []Line, orderType models.OrderType, tip float64) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, ErrNoItems
	}
	if tip < 0 {
		return Quote{}, ErrNegativeTip
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	fee := decimal.Zero
	if orderType == models.OrderTypeDelivery {
		if subtotal.LessThan(DeliveryMinimum) {
			return Quote{}, ErrBelowDeliveryMinimum
		}
		fee = DeliveryFlatFee
	}

	tax := subtotal.Mul(TaxRate).Round(2)
	tipD := decimal.NewFromFloat(tip).Round(2)
	total := subtotal.Add(fee).Add(tax).Add(tipD)

	return Quote{
		Subtotal:    subtotal.InexactFloat64(),
		DeliveryFee: fee.InexactFloat64(),
		Tax:         tax.InexactFloat64(),
		Tip:         tipD.InexactFloat64(),
		Total:       total.InexactFloat64(),
	}, nil
}

// MinorUnits converts a dollar amount to cents for the gateway.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits is the inverse of MinorUnits.
func FromMinorUnits(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
