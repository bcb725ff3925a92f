package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	base
}

type RegisterInput struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username" binding:"required,min=3,max=30"`
	Password     string `json:"password" binding:"required,min=6"`
	PasswordConf string `json:"passwordConf" binding:"required"`
	Phone        string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProfileInput struct {
	FirstName   *string             `json:"firstName"`
	LastName    *string             `json:"lastName"`
	Phone       *string             `json:"phone"`
	Preferences *models.Preferences `json:"preferences"`
}

type AddressInput struct {
	Label     string   `json:"label"`
	Street    string   `json:"street" binding:"required"`
	City      string   `json:"city" binding:"required"`
	State     string   `json:"state"`
	ZipCode   string   `json:"zipCode"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	IsDefault bool     `json:"isDefault"`
}

// HashPassword hashes a plaintext password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a plaintext password against a bcrypt hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates a customer account. Staff accounts only come from seeding.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Password != in.PasswordConf {
		return nil, apperr.BadRequest("Passwords do not match")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, apperr.BadRequest("Email is already registered")
	}
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, apperr.BadRequest("Username is already taken")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Phone:        in.Phone,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.BadRequest("Email or username is already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user_registered", logger.RequestIDFrom(ctx), "new customer account",
		slog.Uint64("user_id", uint64(user.ID)))
	return &user, nil
}

// Login checks credentials and stamps lastLogin.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(in.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is deactivated")
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, fmt.Errorf("stamp last login: %w", err)
	}
	user.LastLogin = &now
	return &user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Addresses").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Preferences != nil {
		user.Preferences = *in.Preferences
	}
	err = s.db.WithContext(ctx).Model(user).
		Select("first_name", "last_name", "phone", "preferences").
		Updates(user).Error
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// AddAddress appends an address. A new default address clears the flag on
// the others; the first address is always the default.
func (s *AuthService) AddAddress(ctx context.Context, userID uint, in AddressInput) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
			return err
		}
		isDefault := in.IsDefault || existing == 0
		if isDefault && existing > 0 {
			if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		addr := models.Address{
			UserID:    userID,
			Label:     in.Label,
			Street:    in.Street,
			City:      in.City,
			State:     in.State,
			ZipCode:   in.ZipCode,
			Country:   in.Country,
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
			IsDefault: isDefault,
		}
		return tx.Create(&addr).Error
	})
	if err != nil {
		return nil, fmt.Errorf("add address: %w", err)
	}
	return s.Profile(ctx, userID)
}
