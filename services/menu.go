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

	"gorm.io/gorm"
)

const popularLimit = 8

type MenuService struct {
	base
}

type MenuFilter struct {
	Category     models.MenuCategory `form:"category" binding:"omitempty,oneof=Breakfast Lunch Dinner Beverages Desserts Appetizers"`
	IsVegetarian *bool               `form:"isVegetarian"`
	IsVegan      *bool               `form:"isVegan"`
	MinPrice     *float64            `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice     *float64            `form:"maxPrice" binding:"omitempty,gte=0"`
	Search       string              `form:"search"`
	Page
}

type MenuItemInput struct {
	Name            string              `json:"name" binding:"required"`
	Description     string              `json:"description" binding:"required"`
	Price           float64             `json:"price" binding:"gte=0"`
	Category        models.MenuCategory `json:"category" binding:"required,oneof=Breakfast Lunch Dinner Beverages Desserts Appetizers"`
	Image           string              `json:"image"`
	IsAvailable     *bool               `json:"isAvailable"`
	PreparationTime int                 `json:"preparationTime" binding:"omitempty,min=1"`
	Ingredients     []string            `json:"ingredients"`
	IsVegetarian    bool                `json:"isVegetarian"`
	IsVegan         bool                `json:"isVegan"`
	SpiceLevel      string              `json:"spiceLevel" binding:"omitempty,oneof=Mild Medium Hot 'Extra Hot'"`
	IsPopular       bool                `json:"isPopular"`
}

// CategoryGroup is one section of the menu as shown to customers.
type CategoryGroup struct {
	Category models.MenuCategory `json:"category"`
	Items    []models.MenuItem   `json:"items"`
}

// List returns available items only, popular first.
func (s *MenuService) List(ctx context.Context, f MenuFilter) ([]models.MenuItem, PageInfo, error) {
	page := f.Page.normalize()
	q := s.db.WithContext(ctx).Model(&models.MenuItem{}).Where("is_available = ?", true)

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.IsVegetarian != nil {
		q = q.Where("is_vegetarian = ?", *f.IsVegetarian)
	}
	if f.IsVegan != nil {
		q = q.Where("is_vegan = ?", *f.IsVegan)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, PageInfo{}, fmt.Errorf("count menu items: %w", err)
	}
	var items []models.MenuItem
	err := page.apply(q).Order("is_popular DESC").Order("name ASC").Find(&items).Error
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("list menu items: %w", err)
	}
	return items, pageInfo(page, total), nil
}

func (s *MenuService) Popular(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.WithContext(ctx).
		Where("is_available = ? AND is_popular = ?", true, true).
		Order("name ASC").Limit(popularLimit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list popular items: %w", err)
	}
	return items, nil
}

// ByCategory groups available items in menu order. Empty categories are omitted.
func (s *MenuService) ByCategory(ctx context.Context) ([]CategoryGroup, error) {
	var items []models.MenuItem
	err := s.db.WithContext(ctx).Where("is_available = ?", true).
		Order("is_popular DESC").Order("name ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	byCat := make(map[models.MenuCategory][]models.MenuItem)
	for _, it := range items {
		byCat[it.Category] = append(byCat[it.Category], it)
	}
	var groups []CategoryGroup
	for _, cat := range models.MenuCategories {
		if len(byCat[cat]) > 0 {
			groups = append(groups, CategoryGroup{Category: cat, Items: byCat[cat]})
		}
	}
	return groups, nil
}

func (s *MenuService) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Menu item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load menu item: %w", err)
	}
	return &item, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	item := models.MenuItem{IsAvailable: true, PreparationTime: 15, SpiceLevel: "Mild"}
	in.applyTo(&item)
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	s.log.Info("menu_item_created", logger.RequestIDFrom(ctx), item.Name,
		slog.Uint64("menu_item_id", uint64(item.ID)))
	return &item, nil
}

func (s *MenuService) Update(ctx context.Context, id uint, in MenuItemInput) (*models.MenuItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(item)
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	return item, nil
}

// Delete removes an item that was never ordered. Items with order history
// keep their row so past orders still resolve; they can be hidden instead.
func (s *MenuService) Delete(ctx context.Context, id uint) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	var used int64
	if err := s.db.WithContext(ctx).Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&used).Error; err != nil {
		return fmt.Errorf("check menu item usage: %w", err)
	}
	if used > 0 {
		return apperr.BadRequest("Menu item %q has been ordered before; mark it unavailable instead", item.Name)
	}
	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}

// ToggleAvailability flips isAvailable and returns the updated item.
func (s *MenuService) ToggleAvailability(ctx context.Context, id uint) (*models.MenuItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.IsAvailable = !item.IsAvailable
	if err := s.db.WithContext(ctx).Model(item).Update("is_available", item.IsAvailable).Error; err != nil {
		return nil, fmt.Errorf("toggle availability: %w", err)
	}
	return item, nil
}

func (in MenuItemInput) applyTo(item *models.MenuItem) {
	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.Price = in.Price
	item.Category = in.Category
	item.Image = in.Image
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if in.PreparationTime > 0 {
		item.PreparationTime = in.PreparationTime
	}
	item.Ingredients = in.Ingredients
	item.IsVegetarian = in.IsVegetarian
	item.IsVegan = in.IsVegan
	if in.SpiceLevel != "" {
		item.SpiceLevel = in.SpiceLevel
	}
	item.IsPopular = in.IsPopular
}
