package services

import (
	"net/http"
	"testing"
	"time"

	"restaurant-ordering-api/events"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderPricesFromMenu(t *testing.T) {
	f := newFixture(t)
	customer := f.user(t, models.RoleCustomer)
	burger := f.menuItem(t, "Burger", 12.99)
	lemonade := f.menuItem(t, "Lemonade", 3.99)

	order, err := f.Orders.Create(t.Context(), customer.ID, CreateOrderInput{
		Items: []OrderLine{
			{MenuItemID: burger.ID, Quantity: 2, SpecialInstructions: "no onion"},
			{MenuItemID: lemonade.ID, Quantity: 1},
		},
		OrderType:       models.OrderTypeDelivery,
		DeliveryAddress: address(),
		Tip:             2,
	})
	require.NoError(t, err)

	assert.InDelta(t, 29.97, order.Subtotal, 1e-9)
	assert.InDelta(t, 5.99, order.DeliveryFee, 1e-9)
	assert.InDelta(t, 2.40, order.Tax, 1e-9)
	assert.InDelta(t, 2.00, order.Tip, 1e-9)
	assert.InDelta(t, order.Subtotal+order.DeliveryFee+order.Tax+order.Tip, order.Total, 1e-9)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.OrderPaymentPending, order.PaymentStatus)
	assert.NotEmpty(t, order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Burger", order.Items[0].Name)
	assert.InDelta(t, 12.99, order.Items[0].Price, 1e-9)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "Order placed", order.StatusHistory[0].Note)
	assert.Equal(t, []string{events.OrderCreated}, f.events.Types())
}

func TestCreateOrderDineInHasNoDeliveryFee(t *testing.T) {
	f := newFixture(t)
	customer := f.user(t, models.RoleCustomer)
	order := f.placeOrder(t, customer, models.OrderTypeDineIn)

	assert.Zero(t, order.DeliveryFee)
	assert.InDelta(t, 25.98, order.Subtotal, 1e-9)
	assert.InDelta(t, 2.08, order.Tax, 1e-9)
	assert.InDelta(t, 28.06, order.Total, 1e-9)
}

func TestCreateOrderDeliveryMinimum(t *testing.T) {
	f := newFixture(t)
	customer := f.user(t, models.RoleCustomer)

	tests := []struct {
		price  float64
		wantOK bool
	}{
		{15.00, true},
		{14.99, false},
	}
	for _, tt := range tests {
		item := f.menuItem(t, "Plate", tt.price)
		_, err := f.Orders.Create(t.Context(), customer.ID, CreateOrderInput{
			Items:           []OrderLine{{MenuItemID: item.ID, Quantity: 1}},
			OrderType:       models.OrderTypeDelivery,
			DeliveryAddress: address(),
		})
		if tt.wantOK {
			assert.NoError(t, err, "price %.2f", tt.price)
			continue
		}
		requireStatus(t, err, http.StatusBadRequest)
		assert.EqualError(t, err, pricing.ErrBelowDeliveryMinimum.Error())
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	customer := f.user(t, models.RoleCustomer)
	item := f.menuItem(t, "Soup", 20)
	gone := f.menuItem(t, "Seasonal", 20)
	require.NoError(t, f.db.Model(gone).Update("is_available", false).Error)
	missingTable := uint(999)

	tests := []struct {
		name string
		in   CreateOrderInput
		want string
	}{
		{
			name: "delivery without address",
			in:   CreateOrderInput{Items: []OrderLine{{MenuItemID: item.ID, Quantity: 1}}, OrderType: models.OrderTypeDelivery},
			want: "Delivery address is required for delivery orders",
		},
		{
			name: "unavailable item",
			in:   CreateOrderInput{Items: []OrderLine{{MenuItemID: gone.ID, Quantity: 1}}, OrderType: models.OrderTypePickup},
			want: "not available",
		},
		{
			name: "unknown item",
			in:   CreateOrderInput{Items: []OrderLine{{MenuItemID: 4242, Quantity: 1}}, OrderType: models.OrderTypePickup},
			want: "Menu item 4242 not available",
		},
		{
			name: "unknown table",
			in:   CreateOrderInput{Items: []OrderLine{{MenuItemID: item.ID, Quantity: 1}}, OrderType: models.OrderTypeDineIn, TableID: &missingTable},
			want: "Table 999 does not exist",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Orders.Create(t.Context(), customer.ID, tt.in)
			requireStatus(t, err, http.StatusBadRequest)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetOrderOwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, models.RoleCustomer)
	other := f.user(t, models.RoleCustomer)
	order := f.placeOrder(t, owner, models.OrderTypePickup)

	got, err := f.Orders.Get(t.Context(), order.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)

	_, err = f.Orders.Get(t.Context(), order.ID, other.ID)
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.Orders.Get(t.Context(), 9999, owner.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestCancelOrderByStatus(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		wantOK bool
	}{
		{models.OrderPending, true},
		{models.OrderConfirmed, true},
		{models.OrderPreparing, true},
		{models.OrderReady, true},
		{models.OrderOutForDelivery, true},
		{models.OrderDelivered, false},
		{models.OrderCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newFixture(t)
			customer := f.user(t, models.RoleCustomer)
			order := f.placeOrder(t, customer, models.OrderTypeDelivery)
			f.setOrderStatus(t, order.ID, tt.status)

			got, err := f.Orders.Cancel(t.Context(), order.ID, customer.ID, "changed my mind")
			if !tt.wantOK {
				requireStatus(t, err, http.StatusBadRequest)
				assert.Contains(t, err.Error(), "cannot be cancelled")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.OrderCancelled, got.Status)
			last := got.StatusHistory[len(got.StatusHistory)-1]
			assert.Equal(t, tt.status, last.FromStatus)
			assert.Equal(t, "changed my mind", last.Note)
			assert.Contains(t, f.events.Types(), events.OrderCancelled)
		})
	}
}

func TestCancelOrderCancelsOpenPayments(t *testing.T) {
	f := newFixture(t)
	customer := f.user(t, models.RoleCustomer)
	order := f.placeOrder(t, customer, models.OrderTypePickup)
	intent, err := f.Payments.CreateIntent(t.Context(), customer.ID, CreateIntentInput{OrderID: order.ID, PaymentMethod: models.MethodCash})
	require.NoError(t, err)

	_, err = f.Orders.Cancel(t.Context(), order.ID, customer.ID, "")
	require.NoError(t, err)

	var payment models.Payment
	require.NoError(t, f.db.First(&payment, intent.Payment.ID).Error)
	assert.Equal(t, models.PaymentCancelled, payment.Status)
}

func TestCancelOrderNotOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, models.RoleCustomer)
	other := f.user(t, models.RoleCustomer)
	order := f.placeOrder(t, owner, models.OrderTypePickup)

	_, err := f.Orders.Cancel(t.Context(), order.ID, other.ID, "")
	requireStatus(t, err, http.StatusForbidden)
}

func TestUpdateOrderStatusFollowsMachine(t *testing.T) {
	f := newFixture(t)
	customer := f.user(t, models.RoleCustomer)
	admin := f.user(t, models.RoleAdmin)
	order := f.placeOrder(t, customer, models.OrderTypePickup)

	_, err := f.Orders.UpdateStatus(t.Context(), order.ID, admin.ID, UpdateOrderStatusInput{Status: models.OrderReady})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.Orders.UpdateStatus(t.Context(), order.ID, admin.ID, UpdateOrderStatusInput{Status: "teleported"})
	requireStatus(t, err, http.StatusBadRequest)

	notes := "extra napkins"
	for _, next := range []models.OrderStatus{models.OrderConfirmed, models.OrderPreparing, models.OrderReady} {
		got, err := f.Orders.UpdateStatus(t.Context(), order.ID, admin.ID, UpdateOrderStatusInput{Status: next, RestaurantNotes: &notes})
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	got, err := f.Orders.UpdateStatus(t.Context(), order.ID, admin.ID, UpdateOrderStatusInput{Status: models.OrderDelivered})
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, got.Status)
	assert.Equal(t, notes, got.RestaurantNotes)
	require.NotNil(t, got.ActualDeliveryTime)
	assert.Len(t, got.StatusHistory, 5)
	require.NotNil(t, got.StatusHistory[1].ChangedBy)
	assert.Equal(t, admin.ID, *got.StatusHistory[1].ChangedBy)
}

func TestMoveOrderRejectsStaleRead(t *testing.T) {
	f := newFixture(t)
	customer := f.user(t, models.RoleCustomer)
	order := f.placeOrder(t, customer, models.OrderTypePickup)

	stale := *order
	f.setOrderStatus(t, order.ID, models.OrderConfirmed)

	err := moveOrder(f.db, &stale, models.OrderCancelled, "customer", &customer.ID, "", time.Now())
	requireStatus(t, err, http.StatusConflict)
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, models.RoleCustomer)
	bob := f.user(t, models.RoleCustomer)
	f.placeOrder(t, alice, models.OrderTypePickup)
	second := f.placeOrder(t, alice, models.OrderTypeDelivery)
	f.placeOrder(t, bob, models.OrderTypeDineIn)
	f.setOrderStatus(t, second.ID, models.OrderConfirmed)

	mine, page, err := f.Orders.ListMine(t.Context(), alice.ID, OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, page.TotalPages)

	confirmed, _, err := f.Orders.ListMine(t.Context(), alice.ID, OrderFilter{Status: models.OrderConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, second.ID, confirmed[0].ID)

	_, _, err = f.Orders.ListMine(t.Context(), alice.ID, OrderFilter{Status: "lost"})
	requireStatus(t, err, http.StatusBadRequest)

	all, page, err := f.Orders.ListAll(t.Context(), OrderFilter{Page: Page{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	dineIn, _, err := f.Orders.ListAll(t.Context(), OrderFilter{OrderType: models.OrderTypeDineIn})
	require.NoError(t, err)
	require.Len(t, dineIn, 1)
	assert.Equal(t, bob.ID, dineIn[0].CustomerID)

	today := time.Now().UTC().Format(time.DateOnly)
	byDate, _, err := f.Orders.ListAll(t.Context(), OrderFilter{Date: today})
	require.NoError(t, err)
	assert.Len(t, byDate, 3)

	none, _, err := f.Orders.ListAll(t.Context(), OrderFilter{Date: "2001-01-01"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
