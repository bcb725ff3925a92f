// Package services holds the business rules behind the HTTP handlers.
package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"restaurant-ordering-api/events"
	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/ordernum"
	"restaurant-ordering-api/payments"
	"restaurant-ordering-api/pricing"

	"gorm.io/gorm"
)

// Options carries the collaborators shared by every service.
type Options struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Events events.Publisher
	// Gateway may be nil, in which case only cash payments are accepted.
	Gateway       payments.Gateway
	OrderNumbers  ordernum.Generator
	Estimator     *pricing.Estimator
	StrictOverlap bool
	Now           func() time.Time
}

type Services struct {
	Auth         *AuthService
	Menu         *MenuService
	Orders       *OrderService
	Payments     *PaymentService
	Reservations *ReservationService
	Tables       *TableService
	Delivery     *DeliveryService
}

func New(opts Options) *Services {
	if opts.Events == nil {
		opts.Events = events.NewLogPublisher(opts.Log)
	}
	if opts.OrderNumbers == nil {
		opts.OrderNumbers = ordernum.NewRandomGenerator()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	b := base{db: opts.DB, log: opts.Log, events: opts.Events, now: opts.Now}

	return &Services{
		Auth:         &AuthService{base: b},
		Menu:         &MenuService{base: b},
		Orders:       &OrderService{base: b, numbers: opts.OrderNumbers},
		Payments:     &PaymentService{base: b, gateway: opts.Gateway},
		Reservations: &ReservationService{base: b, strictOverlap: opts.StrictOverlap},
		Tables:       &TableService{base: b, strictOverlap: opts.StrictOverlap},
		Delivery:     &DeliveryService{base: b, estimator: opts.Estimator},
	}
}

type base struct {
	db     *gorm.DB
	log    *logger.Logger
	events events.Publisher
	now    func() time.Time
}

// publish is best effort: the state change has already committed.
func (b *base) publish(ctx context.Context, e events.Event) {
	if err := b.events.Publish(ctx, e); err != nil {
		b.log.Error("event_publish", logger.RequestIDFrom(ctx), "failed to publish "+e.Type, err,
			slog.String("event_id", e.ID),
			slog.Uint64("aggregate_id", uint64(e.AggregateID)))
	}
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page is the page/limit pair accepted by every list endpoint.
type Page struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

func (p Page) offset() int { return (p.Page - 1) * p.Limit }

func (p Page) apply(q *gorm.DB) *gorm.DB {
	return q.Offset(p.offset()).Limit(p.Limit)
}

type PageInfo struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
}

func pageInfo(p Page, total int64) PageInfo {
	return PageInfo{
		Total:       total,
		CurrentPage: p.Page,
		TotalPages:  int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}
