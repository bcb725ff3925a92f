// Package seed loads the sample restaurant: menu, tables and a few accounts.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/services"

	"gorm.io/gorm"
)

const samplePassword = "password123"

// Run inserts the sample data when the menu is empty. A populated
// database is left untouched.
func Run(ctx context.Context, db *gorm.DB, log *logger.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count menu items: %w", err)
	}
	if count > 0 {
		log.Debug("seed_skipped", "", "menu already present", slog.Int64("menu_items", count))
		return nil
	}

	hash, err := services.HashPassword(samplePassword)
	if err != nil {
		return err
	}

	users := sampleUsers(hash)
	tables := sampleTables()
	menu := sampleMenu()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range users {
			var existing int64
			if err := tx.Model(&models.User{}).Where("email = ?", users[i].Email).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			if err := tx.Create(&users[i]).Error; err != nil {
				return fmt.Errorf("create user %s: %w", users[i].Email, err)
			}
		}
		for i := range tables {
			if err := tx.Where(models.Table{TableNumber: tables[i].TableNumber}).FirstOrCreate(&tables[i]).Error; err != nil {
				return fmt.Errorf("create table %s: %w", tables[i].TableNumber, err)
			}
		}
		if err := tx.Create(&menu).Error; err != nil {
			return fmt.Errorf("create menu: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("seed_completed", "", "sample data created",
		slog.Int("users", len(users)),
		slog.Int("tables", len(tables)),
		slog.Int("menu_items", len(menu)))
	return nil
}

func sampleUsers(hash string) []models.User {
	customer := func(first, last, email, username, phone string) models.User {
		return models.User{
			FirstName: first, LastName: last, Email: email, Username: username,
			PasswordHash: hash, Phone: phone, Role: models.RoleCustomer, IsActive: true,
		}
	}
	return []models.User{
		customer("John", "Doe", "john@example.com", "johndoe", "+1234567890"),
		customer("Jane", "Smith", "jane@example.com", "janesmith", "+1234567891"),
		customer("Mike", "Johnson", "mike@example.com", "mikejohnson", "+1234567892"),
		customer("Sarah", "Wilson", "sarah@example.com", "sarahwilson", "+1234567893"),
		{
			FirstName: "Admin", LastName: "User", Email: "admin@example.com", Username: "admin",
			PasswordHash: hash, Role: models.RoleAdmin, IsActive: true,
		},
		{
			FirstName: "Dave", LastName: "Driver", Email: "driver@example.com", Username: "davedriver",
			PasswordHash: hash, Phone: "+1234567899", Role: models.RoleDriver, IsActive: true,
			DriverInfo: models.DriverInfo{VehicleType: "bike", VehicleNumber: "NY-1234", IsAvailable: true},
		},
	}
}

func sampleTables() []models.Table {
	return []models.Table{
		{TableNumber: "T1", Capacity: 2, Location: models.LocationWindow, IsAvailable: true, Amenities: []string{"round_table"}, Description: "Cozy window table for two"},
		{TableNumber: "T2", Capacity: 4, Location: models.LocationIndoor, IsAvailable: true, Amenities: []string{"square_table"}, Description: "Family table for four"},
		{TableNumber: "T3", Capacity: 6, Location: models.LocationIndoor, IsAvailable: true, Amenities: []string{"round_table"}, Description: "Large round table for groups"},
		{TableNumber: "T4", Capacity: 2, Location: models.LocationOutdoor, IsAvailable: true, Amenities: []string{"round_table"}, Description: "Outdoor patio seating"},
		{TableNumber: "T5", Capacity: 8, Location: models.LocationPrivate, IsAvailable: true, Amenities: []string{"booth", "round_table"}, PricePerHour: 25, Description: "Private dining room"},
		{TableNumber: "B1", Capacity: 4, Location: models.LocationBar, IsAvailable: true, Amenities: []string{"high_chair"}, Description: "Bar seating area"},
	}
}

func sampleMenu() []models.MenuItem {
	item := func(name, desc string, price float64, cat models.MenuCategory, prep int, veg, vegan bool, spice string, popular bool, ingredients ...string) models.MenuItem {
		return models.MenuItem{
			Name: name, Description: desc, Price: price, Category: cat,
			IsAvailable: true, PreparationTime: prep, Ingredients: ingredients,
			IsVegetarian: veg, IsVegan: vegan, SpiceLevel: spice, IsPopular: popular,
		}
	}
	return []models.MenuItem{
		item("Classic Pancakes", "Fluffy buttermilk pancakes served with maple syrup and butter", 8.99, models.CategoryBreakfast, 10, true, false, "Mild", true,
			"flour", "eggs", "milk", "butter", "maple syrup"),
		item("French Toast", "Thick slices of brioche bread soaked in custard and grilled", 9.99, models.CategoryBreakfast, 12, true, false, "Mild", false,
			"brioche bread", "eggs", "cream", "vanilla", "cinnamon"),
		item("Classic Burger", "Beef patty with lettuce, tomato, onion and special sauce on a toasted bun", 12.99, models.CategoryLunch, 15, false, false, "Mild", true,
			"beef patty", "lettuce", "tomato", "onion", "special sauce", "bun"),
		item("Veggie Burger", "Plant-based patty with fresh vegetables and vegan mayo", 11.99, models.CategoryLunch, 12, true, true, "Mild", false,
			"plant-based patty", "lettuce", "tomato", "vegan mayo", "bun"),
		item("Grilled Chicken", "Grilled chicken breast with herbs and spices", 16.99, models.CategoryDinner, 25, false, false, "Medium", true,
			"chicken breast", "herbs", "spices", "olive oil"),
		item("Pasta Primavera", "Fresh pasta with seasonal vegetables in a light cream sauce", 14.99, models.CategoryDinner, 20, true, false, "Mild", false,
			"pasta", "mixed vegetables", "cream", "parmesan", "herbs"),
		item("Strawberry Shake", "Milkshake made with fresh strawberries and vanilla ice cream", 5.99, models.CategoryBeverages, 5, true, false, "Mild", false,
			"fresh strawberries", "vanilla ice cream", "milk", "whipped cream"),
		item("Fresh Lemonade", "Freshly squeezed lemon juice with a hint of mint", 3.99, models.CategoryBeverages, 3, true, true, "Mild", false,
			"fresh lemons", "sugar", "water", "mint"),
		item("Chocolate Cake", "Rich chocolate cake with chocolate frosting", 6.99, models.CategoryDesserts, 5, true, false, "Mild", false,
			"chocolate", "flour", "eggs", "butter", "sugar"),
		item("Chicken Wings", "Crispy chicken wings with your choice of sauce", 9.99, models.CategoryAppetizers, 15, false, false, "Hot", false,
			"chicken wings", "flour", "spices", "sauce"),
	}
}
