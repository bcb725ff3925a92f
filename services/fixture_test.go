package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/config"
	"restaurant-ordering-api/events"
	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/payments"
	"restaurant-ordering-api/pricing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var restaurant = pricing.Point{Lat: 40.7128, Lng: -74.0060}

type fixture struct {
	*Services
	db      *gorm.DB
	events  *events.Recorder
	gateway *payments.Fake
}

type fixtureOption func(*Options)

func withoutGateway() fixtureOption {
	return func(o *Options) { o.Gateway = nil }
}

func withStrictOverlap() fixtureOption {
	return func(o *Options) { o.StrictOverlap = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := config.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", URL: dsn})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	rec := &events.Recorder{}
	fake := payments.NewFake()
	o := Options{
		DB:        db,
		Log:       logger.Discard(),
		Events:    rec,
		Gateway:   fake,
		Estimator: pricing.NewEstimator(restaurant),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &fixture{Services: New(o), db: db, events: rec, gateway: fake}
}

var userSeq int

func (f *fixture) user(t *testing.T, role models.UserRole) *models.User {
	t.Helper()
	userSeq++
	u := models.User{
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		Username:     fmt.Sprintf("user%d", userSeq),
		PasswordHash: "x",
		Phone:        "+100000000",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&u).Error)
	return &u
}

func (f *fixture) menuItem(t *testing.T, name string, price float64) *models.MenuItem {
	t.Helper()
	m := models.MenuItem{
		Name:        name,
		Description: name,
		Price:       price,
		Category:    models.CategoryLunch,
		IsAvailable: true,
		SpiceLevel:  "Mild",
	}
	require.NoError(t, f.db.Create(&m).Error)
	return &m
}

func (f *fixture) table(t *testing.T, number string, capacity int) *models.Table {
	t.Helper()
	tb := models.Table{TableNumber: number, Capacity: capacity, Location: models.LocationIndoor, IsAvailable: true}
	require.NoError(t, f.db.Create(&tb).Error)
	return &tb
}

func address() *models.DeliveryAddress {
	lat, lng := 40.7306, -73.9352
	return &models.DeliveryAddress{Street: "1 Main St", City: "New York", Latitude: &lat, Longitude: &lng}
}

// placeOrder creates an order for customer worth 2 x 12.99.
func (f *fixture) placeOrder(t *testing.T, customer *models.User, orderType models.OrderType) *models.Order {
	t.Helper()
	item := f.menuItem(t, "Burger", 12.99)
	in := CreateOrderInput{
		Items:     []OrderLine{{MenuItemID: item.ID, Quantity: 2}},
		OrderType: orderType,
	}
	if orderType == models.OrderTypeDelivery {
		in.DeliveryAddress = address()
	}
	order, err := f.Orders.Create(t.Context(), customer.ID, in)
	require.NoError(t, err)
	return order
}

func (f *fixture) setOrderStatus(t *testing.T, id uint, status models.OrderStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error)
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, status, appErr.Status, appErr.Message)
}
