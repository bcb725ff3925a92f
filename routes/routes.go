package routes

import (
	"restaurant-ordering-api/availability"
	"restaurant-ordering-api/handlers"
	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := availability.ParseClock(fl.Field().String())
		return err == nil
	})
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, tokens *middleware.Tokens) {
	RegisterValidators()

	r.GET("/health", h.Health)

	api := r.Group("/api/v1")

	// ── Public routes ──────────────────────────────────────────────
	api.GET("/state-machines", h.GetStateMachineInfo)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
	me := authGroup.Group("")
	me.Use(middleware.AuthRequired(tokens))
	{
		me.POST("/logout", h.Logout)
		me.GET("/me", h.GetProfile)
		me.PUT("/me", h.UpdateProfile)
		me.POST("/me/addresses", h.AddAddress)
	}

	menu := api.Group("/menu")
	{
		menu.GET("", h.ListMenu)
		menu.GET("/popular", h.PopularMenu)
		menu.GET("/by-category", h.MenuByCategory)
		menu.GET("/:id", h.GetMenuItem)
	}

	tables := api.Group("/tables")
	{
		tables.GET("", h.ListTables)
		tables.GET("/availability/:date", h.TableAvailability)
		tables.GET("/:id", h.GetTable)
	}

	// ── Customer routes ────────────────────────────────────────────
	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(tokens))
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("/my-orders", h.GetMyOrders)
		orders.GET("/:id", h.GetOrderDetail)
		orders.PATCH("/:id/cancel", h.CancelOrder)
	}

	payments := api.Group("/payments")
	payments.Use(middleware.AuthRequired(tokens))
	{
		payments.POST("/create-intent", h.CreatePaymentIntent)
		payments.POST("/confirm", h.ConfirmPayment)
		payments.GET("/history", h.PaymentHistory)
		payments.GET("/:id", h.GetPayment)
	}

	// Guests may book a table; a bearer token links the booking to the account.
	api.POST("/reservation/send", middleware.OptionalAuth(tokens), h.SendReservation)
	reservation := api.Group("/reservation")
	reservation.Use(middleware.AuthRequired(tokens))
	{
		reservation.GET("/my-reservations", h.MyReservations)
		reservation.GET("/:id", h.GetReservation)
		reservation.PATCH("/:id/cancel", h.CancelReservation)
	}

	// ── Delivery routes ────────────────────────────────────────────
	api.POST("/delivery/calculate-time", h.CalculateDeliveryTime)
	delivery := api.Group("/delivery")
	delivery.Use(middleware.AuthRequired(tokens))
	{
		delivery.GET("/track/:orderId", h.TrackDelivery)
		delivery.GET("/track/:orderId/stream", h.StreamDelivery)
		delivery.POST("/track/:orderId/rate", middleware.RoleRequired(models.RoleCustomer), h.RateDelivery)
	}
	staff := delivery.Group("")
	staff.Use(middleware.RoleRequired(models.RoleAdmin, models.RoleDriver))
	{
		staff.POST("", h.CreateDelivery)
		staff.PATCH("/track/:orderId/location", h.UpdateDeliveryLocation)
		staff.PATCH("/track/:orderId/status", h.UpdateDeliveryStatus)
		staff.GET("/active", h.ActiveDeliveries)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(tokens), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", h.AdminListOrders)
		admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)

		admin.POST("/payments/refund", h.ProcessRefund)

		admin.GET("/reservations", h.AdminListReservations)
		admin.PATCH("/reservations/:id/status", h.UpdateReservationStatus)

		admin.POST("/menu", h.AddMenuItem)
		admin.PUT("/menu/:id", h.UpdateMenuItem)
		admin.DELETE("/menu/:id", h.DeleteMenuItem)
		admin.PATCH("/menu/:id/availability", h.ToggleMenuAvailability)

		admin.POST("/tables", h.CreateTable)
		admin.PUT("/tables/:id", h.UpdateTable)
		admin.DELETE("/tables/:id", h.DeleteTable)
	}
}
