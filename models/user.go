package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleDriver   UserRole = "driver"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	FirstName     string      `json:"firstName" gorm:"not null"`
	LastName      string      `json:"lastName" gorm:"not null"`
	Email         string      `json:"email" gorm:"uniqueIndex;not null"`
	Username      string      `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash  string      `json:"-" gorm:"not null"`
	Phone         string      `json:"phone"`
	Role          UserRole    `json:"role" gorm:"not null;default:'customer'"`
	Addresses     []Address   `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
	Preferences   Preferences `json:"preferences" gorm:"serializer:json"`
	LoyaltyPoints int         `json:"loyaltyPoints" gorm:"default:0"`
	IsActive      bool        `json:"isActive"`
	LastLogin     *time.Time  `json:"lastLogin,omitempty"`
	DriverInfo    DriverInfo  `json:"driverInfo" gorm:"embedded;embeddedPrefix:driver_"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Address struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	UserID    uint     `json:"-" gorm:"index;not null"`
	Label     string   `json:"label" gorm:"default:'Home'"`
	Street    string   `json:"street" gorm:"not null"`
	City      string   `json:"city" gorm:"not null"`
	State     string   `json:"state" gorm:"not null"`
	ZipCode   string   `json:"zipCode" gorm:"not null"`
	Country   string   `json:"country" gorm:"default:'USA'"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	IsDefault bool     `json:"isDefault"`
}

type Preferences struct {
	CuisineTypes        []string `json:"cuisineTypes,omitempty"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty"`
	SpiceLevel          string   `json:"spiceLevel,omitempty"`
}

// DriverInfo is only filled in for driver accounts.
type DriverInfo struct {
	LicenseNumber string `json:"licenseNumber,omitempty"`
	VehicleType   string `json:"vehicleType,omitempty"`
	VehicleNumber string `json:"vehicleNumber,omitempty"`
	IsAvailable   bool   `json:"isAvailable"`
}
