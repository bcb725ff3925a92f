package models

import "time"

type MenuCategory string

const (
	CategoryBreakfast  MenuCategory = "Breakfast"
	CategoryLunch      MenuCategory = "Lunch"
	CategoryDinner     MenuCategory = "Dinner"
	CategoryBeverages  MenuCategory = "Beverages"
	CategoryDesserts   MenuCategory = "Desserts"
	CategoryAppetizers MenuCategory = "Appetizers"
)

// MenuCategories is the display order used by the by-category listing.
var MenuCategories = []MenuCategory{
	CategoryBreakfast, CategoryLunch, CategoryDinner,
	CategoryBeverages, CategoryDesserts, CategoryAppetizers,
}

type MenuItem struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	Name            string       `json:"name" gorm:"not null"`
	Description     string       `json:"description" gorm:"not null"`
	Price           float64      `json:"price" gorm:"not null"`
	Category        MenuCategory `json:"category" gorm:"index;not null"`
	Image           string       `json:"image"`
	IsAvailable     bool         `json:"isAvailable"`
	PreparationTime int          `json:"preparationTime" gorm:"default:15"` // minutes
	Ingredients     []string     `json:"ingredients,omitempty" gorm:"serializer:json"`
	IsVegetarian    bool         `json:"isVegetarian" gorm:"default:false"`
	IsVegan         bool         `json:"isVegan" gorm:"default:false"`
	SpiceLevel      string       `json:"spiceLevel" gorm:"default:'Mild'"`
	IsPopular       bool         `json:"isPopular" gorm:"default:false"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

type TableLocation string

const (
	LocationIndoor  TableLocation = "indoor"
	LocationOutdoor TableLocation = "outdoor"
	LocationPrivate TableLocation = "private"
	LocationBar     TableLocation = "bar"
	LocationWindow  TableLocation = "window"
)

type Table struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	TableNumber  string        `json:"tableNumber" gorm:"uniqueIndex;not null"`
	Capacity     int           `json:"capacity" gorm:"not null"`
	Location     TableLocation `json:"location" gorm:"default:'indoor'"`
	IsAvailable  bool          `json:"isAvailable"`
	Amenities    []string      `json:"amenities,omitempty" gorm:"serializer:json"`
	PricePerHour float64       `json:"pricePerHour" gorm:"default:0"`
	Description  string        `json:"description"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
